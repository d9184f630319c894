package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"
	nodex "github.com/tanpawarit/Chative-Banking-Dialogue/agent/nodes"
)

const (
	nodeValidateRequest = "validate_request"
	nodeLoadSession     = "load_or_create_session"
	nodeProcessTurn     = "process_turn"
	nodeSaveSession     = "validate_and_save_session"
	nodeFinalizeReply   = "finalize_reply"
)

// turnPipeline is the fixed node order of one conversational turn.
var turnPipeline = []string{
	nodeValidateRequest,
	nodeLoadSession,
	nodeProcessTurn,
	nodeSaveSession,
	nodeFinalizeReply,
}

func (o *Orchestrator) compileHandleMessageGraph(
	ctx context.Context,
) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	entry := compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*nodex.GraphState, error) {
		return nodex.ValidateRequest(in, o.now)
	})
	if err := graph.AddLambdaNode(nodeValidateRequest, entry); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeValidateRequest, err)
	}

	steps := map[string]func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error){
		nodeLoadSession: func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.LoadOrCreateSession(ctx, in, o.store)
		},
		nodeProcessTurn: func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ProcessTurn(ctx, in, o.processor)
		},
		nodeSaveSession: func(ctx context.Context, in *nodex.GraphState) (*nodex.GraphState, error) {
			return nodex.ValidateAndSaveSession(ctx, in, o.store)
		},
	}
	for _, name := range turnPipeline[1 : len(turnPipeline)-1] {
		if err := graph.AddLambdaNode(name, compose.InvokableLambda(steps[name])); err != nil {
			return nil, fmt.Errorf("add node %s: %w", name, err)
		}
	}

	exit := compose.InvokableLambda(func(ctx context.Context, in *nodex.GraphState) (nodex.GraphOutput, error) {
		return nodex.FinalizeReply(in)
	})
	if err := graph.AddLambdaNode(nodeFinalizeReply, exit); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodeFinalizeReply, err)
	}

	prev := compose.START
	for _, name := range append(turnPipeline, compose.END) {
		if err := graph.AddEdge(prev, name); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", prev, name, err)
		}
		prev = name
	}

	runner, err := graph.Compile(ctx, compose.WithGraphName("orchestrator.handle_message"))
	if err != nil {
		return nil, fmt.Errorf("compile orchestrator graph: %w", err)
	}
	return runner, nil
}
