package gemini

import (
	"context"
	"fmt"
	"strings"
	"time"

	domainerrors "screen2doc.backend/internal/domain/errors"
)

const prdPromptTemplate = `Based on the following app interface text extracted from a screen recording, generate a detailed Product Requirements Document (PRD) in Markdown format.

APP INTERFACE TEXT:
%s

Generate a comprehensive PRD with exactly these sections:

1. Application Positioning and Target Users
   - Market positioning
   - Target user profiles
   - User needs analysis

2. Navigation Structure
   - Main functional modules
   - Page hierarchy
   - User flows

3. Interface Functionality and Operation Flows
   - Detailed description of each screen
   - Interactive elements
   - Step-by-step operation flows

4. Technical Feature List
   - Core feature list
   - API requirements
   - Data storage requirements

5. Data Flow Design
   - Data processing flows
   - Data model design
   - Security considerations

6. Test Plan
   - Functional test points
   - Performance test metrics
   - User experience testing

Format the response in Markdown with clear sections and subsections.
Include specific details from the provided interface text.
Focus on practical implementation details and user experience.`

const businessPlanPromptTemplate = `Based on the following Product Requirements Document (PRD), generate a comprehensive Business Plan in Markdown format.

PRD CONTENT:
%s

Generate a detailed business plan with exactly these sections:

1. Market Positioning
   - Market demand analysis
   - Market size assessment
   - Competitive advantages

2. User Personas
   - Target user characteristics
   - Usage scenarios
   - User pain points

3. Value Proposition
   - Core value proposition
   - Solution details
   - Innovation highlights

4. Revenue Model
   - Pricing strategy
   - Willingness-to-pay analysis
   - Revenue projections

5. Competitive Analysis
   - Main competitors
   - Feature comparison
   - Differentiation strategy

6. Marketing Strategy
   - Promotion channels
   - Messaging suggestions
   - User acquisition plan

Format the response in Markdown with clear sections and subsections.
Focus on practical business implementation and market potential.`

// TextGenerator is the single-prompt capability the generator consumes,
// satisfied by *Client.
type TextGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// Generator produces the two markdown documents. Both operations only read
// their inputs and return text; persistence belongs to the orchestrator.
type Generator struct {
	client      TextGenerator
	callTimeout time.Duration
}

// NewGenerator creates a generator with a per-call timeout around the model.
func NewGenerator(client TextGenerator, callTimeout time.Duration) *Generator {
	return &Generator{client: client, callTimeout: callTimeout}
}

// GeneratePRD builds the PRD prompt from the extracted texts and returns the
// generated markdown.
func (g *Generator) GeneratePRD(ctx context.Context, extractedTexts []string) (string, error) {
	prompt := fmt.Sprintf(prdPromptTemplate, strings.Join(extractedTexts, "\n"))
	doc, err := g.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domainerrors.ErrGenerationFailure, err)
	}
	return doc, nil
}

// GenerateBusinessPlan builds the business plan prompt seeded by the PRD
// content and returns the generated markdown.
func (g *Generator) GenerateBusinessPlan(ctx context.Context, prdContent string) (string, error) {
	prompt := fmt.Sprintf(businessPlanPromptTemplate, prdContent)
	doc, err := g.generate(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domainerrors.ErrGenerationFailure, err)
	}
	return doc, nil
}

func (g *Generator) generate(ctx context.Context, prompt string) (string, error) {
	if g.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.callTimeout)
		defer cancel()
	}
	return g.client.GenerateContent(ctx, prompt)
}
