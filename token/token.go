// Package token models the fungible balance ledger the engine moves value
// through. The engine never touches balances directly; it goes through a
// ValueTransfer bound to one asset and one custodian account.
package token

import "github.com/sebdeveloper6952/gojobs/domain"

type AssetID string

// ValueTransfer is the capability injected into the stake ledger and the
// certificate market.
type ValueTransfer interface {
	// Asset reports the identity of the asset being moved.
	Asset() AssetID
	Decimals() uint8
	// Pull moves amount from an account into custody. The account must have
	// approved the custodian beforehand.
	Pull(from domain.Address, amount domain.Amount) error
	// Push moves amount out of custody to an account.
	Push(to domain.Address, amount domain.Amount) error
	// Burn destroys amount held in custody, reducing the total supply.
	Burn(amount domain.Amount) error
	TotalSupply() domain.Amount
}

// Movement describes one transfer as seen by a hook.
type Movement struct {
	Asset   AssetID
	Spender domain.Address
	From    domain.Address
	To      domain.Address
	Amount  domain.Amount
}

// Hook is called before a movement is applied. A non nil error aborts the
// movement. Hooks model assets that call back into their counterparties.
type Hook func(m Movement) error
