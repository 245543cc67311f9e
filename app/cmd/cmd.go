// Package cmd has all top-level commands dispatched by main's flag parser.
package cmd

// CommonOptionsCommander extends flags.Commander with SetCommon.
// All commands should implement this interface.
type CommonOptionsCommander interface {
	SetCommon(commonOpts CommonOpts)
	Execute(args []string) error
}

// CommonOpts sets externally from main, shared across all commands
type CommonOpts struct {
	Revision string
}

// SetCommon satisfies CommonOptionsCommander interface and sets common option fields.
// The method is called by main before Execute.
func (c *CommonOpts) SetCommon(commonOpts CommonOpts) {
	c.Revision = commonOpts.Revision
}
