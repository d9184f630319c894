package llm

import (
	"context"
	"fmt"
	"strings"

	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	openaisdk "github.com/openai/openai-go"
	contractx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/contract"
	promptx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/prompt"
	openrouterx "github.com/tanpawarit/Chative-Banking-Dialogue/pkg/openrouter"
)

var _ contractx.LanguageOracle = (*CompletionsOracle)(nil)

// CompletionsOracle calls the chat completions endpoint directly with the
// OpenAI SDK. Prompts are still rendered by eino chat templates.
type CompletionsOracle struct {
	client    *openaisdk.Client
	templates map[contractx.PromptName]*einoprompt.DefaultChatTemplate
	models    map[contractx.ModelRole]openrouterx.Config
}

func NewCompletionsOracle(cfg Config) (*CompletionsOracle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client := openrouterx.NewClient(cfg.OpenRouterFor(contractx.ModelRoleClassifier))
	if client == nil {
		return nil, fmt.Errorf("%w: openrouter client is not configured", contractx.ErrValidation)
	}

	return newCompletionsOracle(client, map[contractx.ModelRole]openrouterx.Config{
		contractx.ModelRoleClassifier: cfg.OpenRouterFor(contractx.ModelRoleClassifier),
		contractx.ModelRoleSummarizer: cfg.OpenRouterFor(contractx.ModelRoleSummarizer),
	}, promptx.LoadPromptSet())
}

func newCompletionsOracle(
	client *openaisdk.Client,
	models map[contractx.ModelRole]openrouterx.Config,
	prompts promptx.PromptSet,
) (*CompletionsOracle, error) {
	if err := prompts.Validate(); err != nil {
		return nil, err
	}

	templates := make(map[contractx.PromptName]*einoprompt.DefaultChatTemplate, 3)
	for _, name := range []contractx.PromptName{
		contractx.PromptNegation,
		contractx.PromptIntent,
		contractx.PromptQuote,
	} {
		if _, ok := models[name.Role()]; !ok {
			return nil, fmt.Errorf("%w: no model for role=%s", contractx.ErrValidation, name.Role())
		}
		tpl, err := prompts.Template(name)
		if err != nil {
			return nil, err
		}
		templates[name] = newChatTemplate(prompts.System, tpl)
	}

	return &CompletionsOracle{
		client:    client,
		templates: templates,
		models:    models,
	}, nil
}

func (o *CompletionsOracle) Complete(ctx context.Context, name contractx.PromptName, vars map[string]any) (string, error) {
	tpl, ok := o.templates[name]
	if !ok {
		return "", fmt.Errorf("%w: unknown prompt %q", contractx.ErrPromptMissing, name)
	}
	modelCfg := o.models[name.Role()]

	rendered, err := tpl.Format(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("%w: render %s: %v", contractx.ErrValidation, name, err)
	}

	params := openaisdk.ChatCompletionNewParams{
		Model:       openaisdk.ChatModel(modelCfg.Model),
		Messages:    toCompletionMessages(rendered),
		Temperature: openaisdk.Float(float64(modelCfg.Temperature)),
	}
	if modelCfg.MaxCompletionToken != nil && *modelCfg.MaxCompletionToken > 0 {
		params.MaxCompletionTokens = openaisdk.Int(int64(*modelCfg.MaxCompletionToken))
	}

	resp, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %s completion: %v", contractx.ErrModelInvoke, name, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: %s returned no choices", contractx.ErrSchemaViolation, name)
	}
	content := strings.TrimSpace(resp.Choices[0].Message.Content)
	if content == "" {
		return "", fmt.Errorf("%w: %s returned empty content", contractx.ErrSchemaViolation, name)
	}
	return content, nil
}

func toCompletionMessages(msgs []*schema.Message) []openaisdk.ChatCompletionMessageParamUnion {
	out := make([]openaisdk.ChatCompletionMessageParamUnion, 0, len(msgs))
	for _, m := range msgs {
		if m == nil {
			continue
		}
		switch m.Role {
		case schema.System:
			out = append(out, openaisdk.SystemMessage(m.Content))
		case schema.Assistant:
			out = append(out, openaisdk.AssistantMessage(m.Content))
		default:
			out = append(out, openaisdk.UserMessage(m.Content))
		}
	}
	return out
}
