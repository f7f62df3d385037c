package vcf

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/inodb/vibe-skewer/internal/variant"
)

// INFO keys read into record fields. Other numeric INFO values become
// record attributes.
const (
	InfoClass      = "CLASS"
	InfoName       = "MNAME"
	InfoOccurrence = "OCCURRENCE"
	InfoDT         = "DT"
	InfoAAPos      = "AAPOS"
	InfoGene       = "GENE"
	InfoPartner    = "PARTNER"
	InfoSide       = "SIDE"
	InfoGermline   = "GERMLINE"
	InfoValidated  = "VALIDATED"
)

var reservedInfo = map[string]bool{
	InfoClass: true, InfoName: true, InfoOccurrence: true, InfoDT: true,
	InfoAAPos: true, InfoGene: true, InfoPartner: true, InfoSide: true,
	InfoGermline: true, InfoValidated: true,
}

// Records converts one VCF line into records, one per alternate allele.
// row seeds the identity of records whose ID column is ".". INFO keys the
// header declares as non-numeric are not read as attributes; h may be nil.
func Records(v *Variant, h *Header, row int) ([]variant.Record, error) {
	var samples []string
	var defs map[string]InfoDef
	if h != nil {
		samples, defs = h.Samples, h.Info
	}

	base := variant.Record{
		Chr:     v.Chrom,
		Pos:     v.Pos,
		Ref:     v.Ref,
		DT:      variant.DTSNVIndel,
		Class:   variant.ClassUnknown,
		Name:    v.Info[InfoName],
		Gene:    v.Info[InfoGene],
		Partner: v.Info[InfoPartner],
		Rim1:    v.HasFlag(InfoGermline),
		Rim2:    v.HasFlag(InfoValidated),
	}
	if c := v.Info[InfoClass]; c != "" {
		base.Class = c
	}
	if s := v.Info[InfoDT]; s != "" {
		dt, err := variant.ParseDataType(s)
		if err != nil {
			return nil, err
		}
		base.DT = dt
	}
	if s := v.Info[InfoOccurrence]; s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %s", InfoOccurrence, s)
		}
		base.Occurrence = n
	}
	if s := v.Info[InfoAAPos]; s != "" {
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %s", InfoAAPos, s)
		}
		base.AAPos = n
	}
	switch v.Info[InfoSide] {
	case "5", "5'":
		base.Side = variant.Side5
	case "3", "3'":
		base.Side = variant.Side3
	}

	out := make([]variant.Record, 0, len(v.Alts))
	for ai, alt := range v.Alts {
		r := base
		r.Alt = alt
		r.Attrs, r.Keyed = nil, nil

		for key, raw := range v.Info {
			if reservedInfo[key] || !defs[key].numeric() {
				continue
			}
			if f, ok := alleleValue(raw, ai, len(v.Alts)); ok {
				r.SetAttr(key, f)
			}
		}
		for si, name := range samples {
			for _, key := range v.Format {
				raw, _ := v.SampleValue(si, key)
				if f, ok := alleleValue(raw, ai, len(v.Alts)); ok {
					r.SetKeyed(key, name, f)
				}
			}
		}

		switch {
		case v.ID != "." && v.ID != "" && len(v.Alts) > 1:
			r.ID = v.ID + ":" + alt
		case v.ID != "." && v.ID != "":
			r.ID = v.ID
		default:
			r.ID = variant.StableID(&r, row)
		}
		out = append(out, r)
	}
	return out, nil
}

// alleleValue parses a numeric value. A comma list with one entry per
// alternate allele yields the entry of allele ai.
func alleleValue(raw string, ai, nalts int) (float64, bool) {
	if raw == "" || raw == "." {
		return 0, false
	}
	if strings.Contains(raw, ",") {
		parts := strings.Split(raw, ",")
		if len(parts) != nalts {
			return 0, false
		}
		raw = parts[ai]
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}
