package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	domainerrors "screen2doc.backend/internal/domain/errors"
)

type stubTextGenerator struct {
	response string
	err      error
	prompts  []string
}

func (s *stubTextGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

func TestGeneratePRD(t *testing.T) {
	stub := &stubTextGenerator{response: "# PRD"}
	g := NewGenerator(stub, time.Minute)

	doc, err := g.GeneratePRD(context.Background(), []string{"Login Screen", "Dashboard"})
	require.NoError(t, err)
	assert.Equal(t, "# PRD", doc)

	require.Len(t, stub.prompts, 1)
	prompt := stub.prompts[0]
	assert.Contains(t, prompt, "Login Screen\nDashboard")
	assert.Contains(t, prompt, "Product Requirements Document")
	assert.Contains(t, prompt, "Application Positioning and Target Users")
	assert.Contains(t, prompt, "Test Plan")
}

func TestGenerateBusinessPlan_SeededByPRD(t *testing.T) {
	stub := &stubTextGenerator{response: "# Business Plan"}
	g := NewGenerator(stub, time.Minute)

	doc, err := g.GenerateBusinessPlan(context.Background(), "# PRD with product details")
	require.NoError(t, err)
	assert.Equal(t, "# Business Plan", doc)

	require.Len(t, stub.prompts, 1)
	prompt := stub.prompts[0]
	assert.Contains(t, prompt, "# PRD with product details")
	assert.Contains(t, prompt, "Revenue Model")
	assert.Contains(t, prompt, "Competitive Analysis")
}

func TestGeneratePRD_Failure(t *testing.T) {
	stub := &stubTextGenerator{err: errors.New("model offline")}
	g := NewGenerator(stub, time.Minute)

	_, err := g.GeneratePRD(context.Background(), []string{"text"})
	assert.ErrorIs(t, err, domainerrors.ErrGenerationFailure)
	assert.Contains(t, err.Error(), "model offline")
}

func TestGenerateBusinessPlan_Failure(t *testing.T) {
	stub := &stubTextGenerator{err: errors.New("model offline")}
	g := NewGenerator(stub, time.Minute)

	_, err := g.GenerateBusinessPlan(context.Background(), "# PRD")
	assert.ErrorIs(t, err, domainerrors.ErrGenerationFailure)
}

type ctxCapturingGenerator struct {
	hadDeadline bool
}

func (c *ctxCapturingGenerator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	_, c.hadDeadline = ctx.Deadline()
	return "doc", nil
}

func TestGenerator_AppliesCallTimeout(t *testing.T) {
	capture := &ctxCapturingGenerator{}
	g := NewGenerator(capture, time.Minute)

	_, err := g.GeneratePRD(context.Background(), []string{"text"})
	require.NoError(t, err)
	assert.True(t, capture.hadDeadline)
}

func TestPromptTemplatesHaveSinglePlaceholder(t *testing.T) {
	assert.Equal(t, 1, strings.Count(prdPromptTemplate, "%s"))
	assert.Equal(t, 1, strings.Count(businessPlanPromptTemplate, "%s"))
}
