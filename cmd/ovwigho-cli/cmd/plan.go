// Copyright (C) 2024, amxrac. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v2"

	"github.com/amxrac/ovwigho/merkle"
	"github.com/amxrac/ovwigho/utils"
)

type Action string

const (
	// Create a named keypair.
	ActionKey Action = "key"
	// Fund a named key from the faucet.
	ActionAirdrop Action = "airdrop"
	// Allocate a tree and initialize the collection of a named authority.
	ActionInitialize Action = "initialize"
	ActionMintCNFT   Action = "mint-cnft"
	// Burn the oldest unburned compressed asset of the named player.
	ActionBurnCNFT Action = "burn-cnft"
	ActionMintNFT  Action = "mint-nft"
)

type Plan struct {
	// The name of the plan.
	Name string `yaml:"name"`
	// A description of the plan.
	Description string `yaml:"description"`
	// Steps to perform, in order.
	Steps []Step `yaml:"steps"`
}

type Step struct {
	Description string `yaml:"description"`
	Action      Action `yaml:"action"`
	// The key performing the step. (required)
	Key string `yaml:"key"`
	// The authority whose collection the step targets.
	Authority string `yaml:"authority,omitempty"`
	// Lamports to airdrop, in whole units when [Amount] is set.
	Lamports uint64 `yaml:"lamports,omitempty"`
	Amount   string `yaml:"amount,omitempty"`

	MaxDepth      uint32 `yaml:"maxDepth,omitempty"`
	MaxBufferSize uint32 `yaml:"maxBufferSize,omitempty"`
	CanopyDepth   uint32 `yaml:"canopyDepth,omitempty"`
	// Overrides the allocated tree size.
	TreeSpace uint64 `yaml:"treeSpace,omitempty"`

	Name    string `yaml:"name,omitempty"`
	URI     string `yaml:"uri,omitempty"`
	Symbol  string `yaml:"symbol,omitempty"`
	NFTName string `yaml:"nftName,omitempty"`
	NFTURI  string `yaml:"nftUri,omitempty"`

	// The program error name, or a substring of the error, the step must
	// fail with.
	ExpectError string `yaml:"expectError,omitempty"`
}

func unmarshalPlan(b []byte) (*Plan, error) {
	var p Plan
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPlan, err)
	}
	return &p, nil
}

// Verify checks the shape of every step. It does not check that named keys
// exist before use.
func (p *Plan) Verify() error {
	if len(p.Steps) == 0 {
		return fmt.Errorf("%w: no steps found", ErrInvalidPlan)
	}
	for i := range p.Steps {
		if err := p.Steps[i].verify(); err != nil {
			return fmt.Errorf("%w %d: %w", ErrInvalidStep, i, err)
		}
	}
	return nil
}

func (s *Step) verify() error {
	if len(s.Key) == 0 {
		return fmt.Errorf("%w: %s requires a key", ErrInvalidAction, s.Action)
	}
	switch s.Action {
	case ActionKey:
	case ActionAirdrop:
		if s.Lamports == 0 && len(s.Amount) == 0 {
			return fmt.Errorf("%w: airdrop requires lamports or amount", ErrInvalidAction)
		}
		if len(s.Amount) > 0 {
			if _, err := utils.ParseBalance(s.Amount); err != nil {
				return err
			}
		}
	case ActionInitialize:
		if s.CanopyDepth > s.MaxDepth {
			return fmt.Errorf("%w: canopy depth %d exceeds max depth %d", ErrInvalidAction, s.CanopyDepth, s.MaxDepth)
		}
		if len(s.ExpectError) == 0 {
			if err := merkle.CheckSupported(s.MaxDepth, s.MaxBufferSize); err != nil {
				return err
			}
		}
	case ActionMintCNFT, ActionBurnCNFT, ActionMintNFT:
		if len(s.Authority) == 0 {
			return fmt.Errorf("%w: %s requires an authority", ErrInvalidAction, s.Action)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidAction, s.Action)
	}
	return nil
}

// lamports returns the airdrop amount of [s].
func (s *Step) lamports() uint64 {
	if len(s.Amount) == 0 {
		return s.Lamports
	}
	v, _ := utils.ParseBalance(s.Amount)
	return v
}

type Response struct {
	Plan string `json:"plan"`
	// The index of the step that generated this response.
	ID     int    `json:"id"`
	Action Action `json:"action"`
	Result Result `json:"result,omitempty"`
	// The error message if the step failed.
	Error string `json:"error,omitempty"`
}

type Result struct {
	Signature string `json:"signature,omitempty"`
	Address   string `json:"address,omitempty"`
	Balance   uint64 `json:"balance,omitempty"`
	Msg       string `json:"msg,omitempty"`
}

func (r *Response) Print() {
	b, err := json.Marshal(r)
	if err != nil {
		utils.Outf("{{red}}failed to marshal response:{{/}} %v\n", err)
		return
	}
	if len(r.Error) > 0 {
		utils.Outf("{{red}}%s{{/}}\n", b)
		return
	}
	utils.Outf("{{green}}%s{{/}}\n", b)
}
