// Package handlers adapts services to procedure table entries, one provider
// per capability area.
package handlers

import "github.com/votopopular/civic-api/internal/rpc"

// Provider contributes entries to the procedure table.
type Provider interface {
	Procedures() []rpc.Procedure
}

var (
	public        = rpc.Access{}
	authenticated = rpc.Access{Auth: true}
)
