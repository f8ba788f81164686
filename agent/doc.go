// Package agent contains the model-backed agent used by every domain and by
// the router.
//
// ModelAgent binds a model.Model, an Instruction and a tool set, and runs
// them through flow.SingleAgentFlow. Instruction is either static text or a
// Provider evaluated per run; NewDatedInstruction stamps the build date into
// a prompt.
package agent
