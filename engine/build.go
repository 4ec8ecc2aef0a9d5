package engine

import (
	"fmt"

	"github.com/sebdeveloper6952/gojobs/certificate"
	"github.com/sebdeveloper6952/gojobs/config"
	"github.com/sebdeveloper6952/gojobs/domain"
	"github.com/sebdeveloper6952/gojobs/jobs"
	"github.com/sebdeveloper6952/gojobs/stake"
	"github.com/sebdeveloper6952/gojobs/token"
	"github.com/sebdeveloper6952/gojobs/validation"
)

// CertificateCollection lets the config name the engine's own certificate
// market as an AGI type.
const CertificateCollection = "certificate"

// build wires the cores together and applies the configured parameters.
// Events emitted while configuring are discarded.
func (e *Engine) build() error {
	owner, err := e.configuredAddress(e.cfg.Owner, domain.Address(e.pk))
	if err != nil {
		return fmt.Errorf("engine: owner: %w", err)
	}
	treasury, err := e.configuredAddress(e.cfg.Treasury, owner)
	if err != nil {
		return fmt.Errorf("engine: treasury: %w", err)
	}

	e.bank = token.NewBank()
	if err := e.bank.Register(e.asset, e.cfg.Asset.Decimals); err != nil {
		return err
	}
	stakeVault, err := token.NewCustody(e.bank, e.asset, domain.ModuleAddress("stake"))
	if err != nil {
		return err
	}
	certificateVault, err := token.NewCustody(e.bank, e.asset, domain.ModuleAddress("certificate"))
	if err != nil {
		return err
	}

	if e.ledger, err = stake.New(stakeVault, owner, treasury, e.buffer); err != nil {
		return err
	}
	e.validation = validation.New(owner, e.ledger, e.clock, e.buffer)
	e.registry = jobs.New(owner, e.ledger, e.validation, e.clock, e.buffer)
	if e.market, err = certificate.New(certificateVault, domain.ModuleAddress("certificate"), owner, e.buffer); err != nil {
		return err
	}
	e.registry.SetCertificateMinter(e.market)
	e.registry.SetHoldings(e.market)

	steps := []func() error{
		func() error { return e.ledger.SetJobRegistry(owner, e.registry.Address()) },
		func() error { return e.ledger.SetSlasher(owner, e.validation.Address()) },
		func() error { return e.validation.SetJobRegistry(owner, e.registry.Address()) },
		func() error { return e.market.SetJobRegistry(owner, e.registry.Address()) },
	}
	steps = append(steps, e.stakeParams(owner)...)
	steps = append(steps, e.jobParams(owner)...)
	steps = append(steps, e.validationParams(owner)...)
	for _, step := range steps {
		if err := step(); err != nil {
			return fmt.Errorf("engine: configure: %w", err)
		}
	}

	e.log.Debugf("[engine] configured market owned by %s (%d setup events)", owner, len(e.buffer.Drain()))
	return nil
}

func (e *Engine) stakeParams(owner domain.Address) []func() error {
	c := e.cfg.Stake
	steps := []func() error{
		func() error { return e.ledger.SetFeePct(owner, domain.BasisPoints(c.FeePct)) },
		func() error { return e.ledger.SetBurnPct(owner, domain.BasisPoints(c.BurnPct)) },
		func() error { return e.ledger.SetEmployerSlashPct(owner, domain.BasisPoints(c.EmployerSlashPct)) },
	}

	minStakes := map[domain.Role]string{
		domain.RoleAgent:     c.MinAgent,
		domain.RoleEmployer:  c.MinEmployer,
		domain.RoleValidator: c.MinValidator,
	}
	for _, role := range domain.Roles {
		role, s := role, minStakes[role]
		steps = append(steps, func() error {
			amount, err := config.Amount(s)
			if err != nil {
				return err
			}
			return e.ledger.SetMinStake(owner, role, amount)
		})
	}

	for _, t := range c.AGITypes {
		t := t
		steps = append(steps, func() error {
			nft := e.market.Address()
			if t.NFT != CertificateCollection {
				var err error
				if nft, err = domain.ParseAddress(t.NFT); err != nil {
					return err
				}
			}
			return e.ledger.AddAGIType(owner, nft, domain.BasisPoints(t.Pct))
		})
	}
	return steps
}

func (e *Engine) jobParams(owner domain.Address) []func() error {
	c := e.cfg.Jobs
	steps := []func() error{
		func() error {
			amount, err := config.Amount(c.MaxReward)
			if err != nil {
				return err
			}
			return e.registry.SetMaxJobReward(owner, amount)
		},
		func() error { return e.registry.SetMaxJobDuration(owner, c.MaxDuration) },
		func() error { return e.registry.SetValidatorRewardPct(owner, domain.BasisPoints(c.ValidatorRewardPct)) },
		func() error {
			node, err := config.Hash(c.AgentRootNode)
			if err != nil {
				return err
			}
			return e.registry.SetAgentRootNode(owner, node)
		},
		func() error {
			root, err := config.Hash(c.AgentMerkleRoot)
			if err != nil {
				return err
			}
			return e.registry.SetAgentMerkleRoot(owner, root)
		},
		func() error {
			seed, err := config.Hash(c.SelectionSeed)
			if err != nil {
				return err
			}
			return e.registry.SetSelectionSeed(owner, seed)
		},
	}
	for _, s := range c.AdditionalAgents {
		s := s
		steps = append(steps, func() error {
			agent, err := domain.ParseAddress(s)
			if err != nil {
				return err
			}
			return e.registry.AddAdditionalAgent(owner, agent)
		})
	}
	return steps
}

func (e *Engine) validationParams(owner domain.Address) []func() error {
	c := e.cfg.Validation
	steps := []func() error{
		func() error { return e.validation.SetCommitWindow(owner, c.CommitWindow) },
		func() error { return e.validation.SetRevealWindow(owner, c.RevealWindow) },
		func() error { return e.validation.SetValidatorsPerJob(owner, c.ValidatorsPerJob) },
		func() error { return e.validation.SetRevealQuorum(owner, c.RevealQuorum) },
		func() error {
			node, err := config.Hash(c.ClubRootNode)
			if err != nil {
				return err
			}
			return e.validation.SetClubRootNode(owner, node)
		},
		func() error {
			root, err := config.Hash(c.MerkleRoot)
			if err != nil {
				return err
			}
			return e.validation.SetValidatorMerkleRoot(owner, root)
		},
		func() error {
			amount, err := config.Amount(c.Penalty)
			if err != nil || amount.IsZero() {
				return err
			}
			return e.validation.SetPenalty(owner, validation.StakePenalty{
				Ledger: e.ledger,
				Caller: e.validation.Address(),
				Amount: amount,
			})
		},
	}
	for _, s := range c.AdditionalValidators {
		s := s
		steps = append(steps, func() error {
			v, err := domain.ParseAddress(s)
			if err != nil {
				return err
			}
			return e.validation.AddAdditionalValidator(owner, v)
		})
	}
	return steps
}

func (e *Engine) configuredAddress(s string, fallback domain.Address) (domain.Address, error) {
	if s == "" {
		return fallback, nil
	}
	return domain.ParseAddress(s)
}
