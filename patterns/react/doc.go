// Package react provides a prebuilt ReAct (Reasoning + Acting) agent built
// on the graph package.
//
// The agent graph has three nodes. "agent" sends the conversation to a
// tool-calling model and appends its reply. When the reply requests tools,
// [RouteToolCalls] selects "use_tool" and the "tools" node ([ToolNode])
// dispatches each call and appends one tool-role message per call before
// control returns to "agent". Otherwise "direct_answer" leads to "finalize",
// which copies the reply into the final_answer field.
//
// Tool failures never abort the run: an unknown tool name or a failing tool
// becomes a tool-role message describing the problem, so the model can
// recover. The loop is bounded by [WithMaxSteps].
//
// Example:
//
//	registry, _ := tool.NewRegistry(calculator.NewAdditionTool())
//	agent, err := react.NewAgent(model, registry, react.WithSystemPrompt("Be brief."))
//	if err != nil {
//	    return err
//	}
//	answer, err := react.Ask(ctx, agent, "what is 2 + 4?")
package react
