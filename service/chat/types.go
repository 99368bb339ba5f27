package chat

import (
	"context"
)

// Handlers implements one method per inbound event. Returning a
// *errs.CodeError sends its message to the caller verbatim; any other error is
// masked.
type Handlers interface {
	OnlineMember(ctx context.Context, c *Conn, e OnlineMember) error
	OfflineMember(ctx context.Context, c *Conn, e OfflineMember) error
	OnlineMembers(ctx context.Context, c *Conn, e OnlineMembers) error
	BanMember(ctx context.Context, c *Conn, e BanMember) error
	Message(ctx context.Context, c *Conn, e SendMessage) error
	SeeMessage(ctx context.Context, c *Conn, e SeeMessage) error
}
