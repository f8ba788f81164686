// Package orchestrator implements the Router: a model-driven dispatcher that
// sends each user request to exactly one domain agent, or answers greetings
// and unclear requests itself.
//
// The router model chooses by calling one of five dispatch tools. The first
// call in a request is recorded; later ones are refused. Domain dispatch ends
// the router's turn and the original request text, not the model's copy of
// it, is handed to the chosen agent on the same conversation:
//
//	r := orchestrator.New(llm, map[orchestrator.Route]core.Agent{
//		orchestrator.RouteExpense: expense.NewAgent(llm, expenseTools),
//	})
//	reply, err := r.Process(ctx, "Add 50 TL for coffee", "PersonalAssistant")
package orchestrator
