package domain

// AgentStatus describes one AI capability for the informational status
// endpoint. It reports last-known state only and is not consulted by the
// pipeline.
type AgentStatus struct {
	Name   string `json:"name"`
	Status string `json:"status"`
}
