package llm

import (
	"context"
	"fmt"
	"strings"

	einomodel "github.com/cloudwego/eino/components/model"
	einoprompt "github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	contractx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/contract"
	promptx "github.com/tanpawarit/Chative-Banking-Dialogue/agent/prompt"
)

var _ contractx.LanguageOracle = (*Oracle)(nil)

// Oracle answers prompts through one compiled template->model graph per prompt.
type Oracle struct {
	runners map[contractx.PromptName]compose.Runnable[map[string]any, *schema.Message]
}

func NewOracle(ctx context.Context, cfg Config) (*Oracle, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	classifierCfg := cfg.OpenRouterFor(contractx.ModelRoleClassifier)
	classifier, err := classifierCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create classifier model: %v", contractx.ErrModelInvoke, err)
	}
	summarizerCfg := cfg.OpenRouterFor(contractx.ModelRoleSummarizer)
	summarizer, err := summarizerCfg.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: create summarizer model: %v", contractx.ErrModelInvoke, err)
	}

	return newOracle(ctx, classifier, summarizer, promptx.LoadPromptSet())
}

func newOracle(
	ctx context.Context,
	classifier einomodel.BaseChatModel,
	summarizer einomodel.BaseChatModel,
	prompts promptx.PromptSet,
) (*Oracle, error) {
	if err := prompts.Validate(); err != nil {
		return nil, err
	}

	models := map[contractx.ModelRole]einomodel.BaseChatModel{
		contractx.ModelRoleClassifier: classifier,
		contractx.ModelRoleSummarizer: summarizer,
	}

	o := &Oracle{
		runners: make(map[contractx.PromptName]compose.Runnable[map[string]any, *schema.Message], 3),
	}
	for _, name := range []contractx.PromptName{
		contractx.PromptNegation,
		contractx.PromptIntent,
		contractx.PromptQuote,
	} {
		chatModel := models[name.Role()]
		if chatModel == nil {
			return nil, fmt.Errorf("%w: no model for role=%s", contractx.ErrValidation, name.Role())
		}
		tpl, err := prompts.Template(name)
		if err != nil {
			return nil, err
		}
		runner, err := compilePromptGraph(ctx, chatModel, prompts.System, tpl, "oracle."+string(name))
		if err != nil {
			return nil, fmt.Errorf("%w: compile %s graph: %v", contractx.ErrModelInvoke, name, err)
		}
		o.runners[name] = runner
	}
	return o, nil
}

func (o *Oracle) Complete(ctx context.Context, name contractx.PromptName, vars map[string]any) (string, error) {
	runner, ok := o.runners[name]
	if !ok {
		return "", fmt.Errorf("%w: unknown prompt %q", contractx.ErrPromptMissing, name)
	}

	msg, err := runner.Invoke(ctx, vars)
	if err != nil {
		return "", fmt.Errorf("%w: %s invoke: %v", contractx.ErrModelInvoke, name, err)
	}
	if msg == nil || strings.TrimSpace(msg.Content) == "" {
		return "", fmt.Errorf("%w: %s returned empty content", contractx.ErrSchemaViolation, name)
	}
	return strings.TrimSpace(msg.Content), nil
}

func newChatTemplate(systemPrompt, userTemplate string) *einoprompt.DefaultChatTemplate {
	return einoprompt.FromMessages(
		schema.FString,
		schema.SystemMessage(systemPrompt),
		schema.UserMessage(userTemplate),
	)
}

func compilePromptGraph(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	systemPrompt string,
	userTemplate string,
	graphName string,
) (compose.Runnable[map[string]any, *schema.Message], error) {
	graph := compose.NewGraph[map[string]any, *schema.Message]()
	if err := graph.AddChatTemplateNode("prompt", newChatTemplate(systemPrompt, userTemplate)); err != nil {
		return nil, fmt.Errorf("add prompt node: %w", err)
	}
	if err := graph.AddChatModelNode("model", chatModel); err != nil {
		return nil, fmt.Errorf("add model node: %w", err)
	}
	if err := graph.AddEdge(compose.START, "prompt"); err != nil {
		return nil, fmt.Errorf("add edge start->prompt: %w", err)
	}
	if err := graph.AddEdge("prompt", "model"); err != nil {
		return nil, fmt.Errorf("add edge prompt->model: %w", err)
	}
	if err := graph.AddEdge("model", compose.END); err != nil {
		return nil, fmt.Errorf("add edge model->end: %w", err)
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName(graphName))
	if err != nil {
		return nil, fmt.Errorf("compile prompt graph: %w", err)
	}
	return runner, nil
}
