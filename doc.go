// Package qwensdk provides a Go SDK for driving the Qwen Code CLI agent.
//
// The SDK spawns the qwen CLI as a subprocess and talks to it over a
// single line-delimited JSON channel that carries both the conversation
// and a bidirectional control protocol: prompts and model output flow one
// way, while permission requests, mode switches, model switches, and
// interrupts flow as correlated request/response pairs.
//
// # Basic Usage
//
//	ctx := context.Background()
//	q, err := qwensdk.StartWithPrompt(ctx, "What does this function do?",
//	    qwensdk.WithModel("coder"),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer q.Close()
//
//	for msg, err := range q.Messages(ctx) {
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    switch m := msg.(type) {
//	    case *qwensdk.AssistantMessage:
//	        for _, block := range m.Content {
//	            if text, ok := block.(*qwensdk.TextBlock); ok {
//	                fmt.Println(text.Text)
//	            }
//	        }
//	    case *qwensdk.ResultMessage:
//	        fmt.Printf("Completed in %dms\n", m.DurationMs)
//	    }
//	}
//
// # Multi-Turn Sessions
//
// Feed prompts from a channel to keep a session open across turns:
//
//	prompts := make(chan qwensdk.PromptMessage)
//	q, err := qwensdk.Start(ctx, qwensdk.PromptsFromChannel(prompts))
//	// ... send prompts, read q.Messages(ctx), close(prompts) when done
//
// # Tool Permissions
//
// The CLI asks before running tools. Standing allow/deny lists and the
// approval mode decide most requests locally; the rest are delegated to
// your callback:
//
//	q, err := qwensdk.Start(ctx, prompts,
//	    qwensdk.WithPermissionMode("default"),
//	    qwensdk.WithExcludeTools("run_shell_command"),
//	    qwensdk.WithCanUseTool(func(ctx context.Context, tool string, input map[string]any, pc *qwensdk.PermissionContext) (qwensdk.PermissionResult, error) {
//	        if approvedByUser(tool, input) {
//	            return &qwensdk.PermissionAllow{}, nil
//	        }
//	        return &qwensdk.PermissionDeny{Message: "not approved"}, nil
//	    }),
//	)
//
// # Error Handling
//
// The SDK provides typed errors for failure scenarios:
//
//	if cliErr, ok := errors.AsType[*qwensdk.CLINotFoundError](err); ok {
//	    log.Fatalf("qwen CLI not installed, searched: %v", cliErr.SearchedPaths)
//	}
//	if procErr, ok := errors.AsType[*qwensdk.ProcessError](err); ok {
//	    log.Fatalf("CLI exited with code %d: %s", procErr.ExitCode, procErr.Stderr)
//	}
//
// # Requirements
//
// The Qwen Code CLI must be installed and available in PATH, or its
// location given with WithExecutablePath.
package qwensdk
