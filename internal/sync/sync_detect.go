// sync_detect.go implements change detection between local and remote flags.
//
// Separated from sync.go to isolate the comparison rules. The remote service
// echoes back fields in forms the local files never use (empty description,
// false booleans, empty filter sections), so both sides are normalised
// before hashing. Two flags whose normalised canonical JSON hashes match
// are unchanged and are never sent.

package sync

import (
	"encoding/hex"

	"golang.org/x/crypto/blake2b"

	"github.com/jpl-au/flagsync/internal/model"
)

// Action is what sync does with one flag.
type Action string

const (
	ActionCreate    Action = "create"
	ActionUpdate    Action = "update"
	ActionUnchanged Action = "unchanged"
	ActionSkip      Action = "skip"
)

// Fingerprint returns a stable hash of f's comparable content.
func Fingerprint(f model.Flag) (string, error) {
	b, err := normalise(f).Canonical()
	if err != nil {
		return "", err
	}
	sum := blake2b.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// detect decides the action for local given the remote copy, if any.
func detect(local model.Flag, remote *model.RemoteFlag) (Action, error) {
	if remote == nil {
		return ActionCreate, nil
	}
	lh, err := Fingerprint(local)
	if err != nil {
		return "", err
	}
	rh, err := Fingerprint(remote.Flag)
	if err != nil {
		return "", err
	}
	if lh == rh {
		return ActionUnchanged, nil
	}
	return ActionUpdate, nil
}

// index maps remote flags by key.
func index(remote []model.RemoteFlag) map[string]*model.RemoteFlag {
	m := make(map[string]*model.RemoteFlag, len(remote))
	for i := range remote {
		m[remote[i].Key] = &remote[i]
	}
	return m
}

// normalise drops values that carry no meaning so that "absent", "null"
// and "empty" compare equal. Members the model does not declare are kept,
// so a remote field the local file lacks still counts as a difference.
func normalise(f model.Flag) model.Flag {
	if f.Description != nil && *f.Description == "" {
		f.Description = nil
	}
	if f.EnsureExperienceContinues != nil && !*f.EnsureExperienceContinues {
		f.EnsureExperienceContinues = nil
	}
	f.Variants = normaliseVariants(f.Variants)
	if f.Filters != nil {
		fl := *f.Filters
		fl.Extra = dropNulls(fl.Extra)
		if fl.Multivariate != nil {
			mv := *fl.Multivariate
			mv.Variants = normaliseVariants(mv.Variants)
			mv.Extra = dropNulls(mv.Extra)
			if mv.Variants == nil && mv.Extra == nil {
				fl.Multivariate = nil
			} else {
				fl.Multivariate = &mv
			}
		}
		if len(fl.Groups) == 0 {
			fl.Groups = nil
		} else {
			groups := make([]model.Group, len(fl.Groups))
			for i, g := range fl.Groups {
				if len(g.Properties) == 0 {
					g.Properties = nil
				}
				g.Extra = dropNulls(g.Extra)
				groups[i] = g
			}
			fl.Groups = groups
		}
		if len(fl.Payloads) == 0 {
			fl.Payloads = nil
		}
		if fl.Groups == nil && fl.Multivariate == nil && fl.Payloads == nil && fl.Extra == nil {
			f.Filters = nil
		} else {
			f.Filters = &fl
		}
	}
	return f
}

func normaliseVariants(vs []model.Variant) []model.Variant {
	if len(vs) == 0 {
		return nil
	}
	out := make([]model.Variant, len(vs))
	for i, v := range vs {
		v.Extra = dropNulls(v.Extra)
		out[i] = v
	}
	return out
}

// dropNulls returns m without its null members, or nil when none remain.
func dropNulls(m map[string]any) map[string]any {
	var out map[string]any
	for k, v := range m {
		if v == nil {
			continue
		}
		if out == nil {
			out = make(map[string]any, len(m))
		}
		out[k] = v
	}
	return out
}
