package domain

// Authorizable is implemented by every component that has an owner and a
// set of privileged callers.
type Authorizable interface {
	Owner() Address
	TransferOwnership(caller, newOwner Address) error
}

// Checkpointer is implemented by state holders that can undo everything
// that happened after Checkpoint was called. Composite operations take a
// checkpoint on every collaborator that offers one and revert on failure.
type Checkpointer interface {
	Checkpoint() (revert func())
}

// Ownable is embedded by components to share the owner checks.
type Ownable struct {
	owner Address
}

func NewOwnable(owner Address) Ownable {
	return Ownable{owner: owner}
}

func (o *Ownable) Owner() Address {
	return o.owner
}

func (o *Ownable) IsOwner(caller Address) bool {
	return !o.owner.IsZero() && caller == o.owner
}

func (o *Ownable) RequireOwner(op string, caller Address) error {
	if !o.IsOwner(caller) {
		return Fail(op, ErrNotAuthorized, "caller %s is not the owner", caller)
	}
	return nil
}

func (o *Ownable) TransferOwnership(caller, newOwner Address) error {
	if err := o.RequireOwner("transferOwnership", caller); err != nil {
		return err
	}
	if newOwner.IsZero() {
		return Fail("transferOwnership", ErrNotAuthorized, "new owner is the zero address")
	}
	o.owner = newOwner
	return nil
}

// Checkpoint reverts through c when it implements Checkpointer and is a
// no-op otherwise.
func Checkpoint(c any) (revert func()) {
	if cp, ok := c.(Checkpointer); ok {
		return cp.Checkpoint()
	}
	return func() {}
}
