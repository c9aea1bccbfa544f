package save

import (
	"fmt"
	"strconv"
	"strings"
)

// Lookup returns the raw value for a parameter name and whether it was set.
type Lookup func(key string) (string, bool)

// ParseFacts reads Facts from string parameters (query strings, RPC
// structs). game_id and days are required; everything else defaults to zero.
func ParseFacts(get Lookup) (Facts, error) {
	var f Facts
	var errs []string

	gameID, ok, err := parseUint(get, "game_id", 64)
	switch {
	case err != nil:
		errs = append(errs, err.Error())
	case !ok:
		errs = append(errs, "missing param game_id")
	default:
		f.GameID = gameID
	}

	days, ok, err := parseUint(get, "days", 32)
	switch {
	case err != nil:
		errs = append(errs, err.Error())
	case !ok || days == 0:
		errs = append(errs, "missing/invalid param days")
	default:
		f.DaysPlayed = uint32(days)
	}

	if s, ok := get("multiplayer_id"); ok && s != "" {
		v, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			errs = append(errs, "invalid multiplayer_id")
		}
		f.MultiplayerID = v
	}
	if s, ok := get("luck"); ok && s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			errs = append(errs, "invalid luck")
		}
		f.DailyLuck = v
	}

	counters := []struct {
		key string
		dst *uint32
	}{
		{"geodes_cracked", &f.GeodesCracked},
		{"trash_cans_checked", &f.TrashCansChecked},
	}
	for _, c := range counters {
		v, _, err := parseUint(get, c.key, 32)
		if err != nil {
			errs = append(errs, err.Error())
		}
		*c.dst = uint32(v)
	}
	if s, ok := get("deepest_mine_level"); ok && s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			errs = append(errs, "invalid deepest_mine_level")
		}
		f.DeepestMineLevel = v
	}

	flags := []struct {
		key string
		dst *bool
	}{
		{"trash_book", &f.HasTrashBook},
		{"qi_beans", &f.QiBeansActive},
		{"wedding_today", &f.WeddingToday},
		{"child_eligible", &f.ChildEligible},
	}
	for _, fl := range flags {
		s, ok := get(fl.key)
		if !ok || s == "" {
			continue
		}
		v, err := strconv.ParseBool(s)
		if err != nil {
			errs = append(errs, "invalid "+fl.key)
		}
		*fl.dst = v
	}

	if s, ok := get("mail"); ok && s != "" {
		for _, m := range strings.Split(s, ",") {
			if m = strings.TrimSpace(m); m != "" {
				f.Mail = append(f.Mail, m)
			}
		}
	}

	if len(errs) > 0 {
		return Facts{}, fmt.Errorf("invalid facts: %s", strings.Join(errs, "; "))
	}
	return f, nil
}

// ParseOnceFlags reads stump_fell / capsule_seen.
func ParseOnceFlags(get Lookup) (OnceFlags, error) {
	var o OnceFlags
	for _, fl := range []struct {
		key string
		dst *bool
	}{{"stump_fell", &o.StumpFell}, {"capsule_seen", &o.CapsuleSeen}} {
		s, ok := get(fl.key)
		if !ok || s == "" {
			continue
		}
		v, err := strconv.ParseBool(s)
		if err != nil {
			return OnceFlags{}, fmt.Errorf("invalid %s", fl.key)
		}
		*fl.dst = v
	}
	return o, nil
}

func parseUint(get Lookup, key string, bits int) (uint64, bool, error) {
	s, ok := get(key)
	if !ok || s == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseUint(s, 10, bits)
	if err != nil {
		return 0, false, fmt.Errorf("invalid %s", key)
	}
	return v, true, nil
}
