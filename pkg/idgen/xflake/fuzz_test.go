package xflake

import (
	"testing"
)

func FuzzPackUnpack(f *testing.F) {
	f.Add(uint64(0), uint64(0), uint64(0))
	f.Add(uint64(36000), uint64(7), uint64(1023))
	f.Add(uint64(1)<<41-1, uint64(1023), uint64(4095))
	f.Add(^uint64(0), ^uint64(0), ^uint64(0))

	f.Fuzz(func(t *testing.T, unit, machine, seq uint64) {
		for _, v := range Variants() {
			l := v.Layout()
			id, err := Pack(v, unit, machine, seq)
			if err != nil {
				if v != Variant63 || unit <= l.TimeMask() {
					t.Fatalf("Pack(%s, %d, %d, %d): %v", v, unit, machine, seq, err)
				}
				continue
			}
			c, err := Unpack(v, id)
			if err != nil {
				t.Fatalf("Unpack(%s, %d): %v", v, id, err)
			}
			if c.Machine != machine&l.MachineMask() || c.Sequence != seq&l.SequenceMask() {
				t.Fatalf("%s: machine/sequence mismatch: %+v", v, c)
			}
			if v == Variant53 && c.Time != unit&l.TimeMask() {
				t.Fatalf("53: time mismatch: got %d want %d", c.Time, unit&l.TimeMask())
			}
			if v == Variant63 && c.Time != unit {
				t.Fatalf("63: time mismatch: got %d want %d", c.Time, unit)
			}
			again, err := Pack(v, c.Time, c.Machine, c.Sequence)
			if err != nil || again != id {
				t.Fatalf("%s: repack %d != %d (%v)", v, again, id, err)
			}
		}
	})
}

func FuzzEncodeParse(f *testing.F) {
	f.Add(int64(0))
	f.Add(int64(2628608))
	f.Add(int64(1) << 62)

	f.Fuzz(func(t *testing.T, id int64) {
		for _, enc := range Encodings() {
			s, err := Encode(id, enc)
			if id < 0 {
				if err == nil {
					t.Fatalf("Encode(%d, %s): want error", id, enc)
				}
				continue
			}
			if err != nil {
				t.Fatalf("Encode(%d, %s): %v", id, enc, err)
			}
			got, err := Parse(s, enc)
			if err != nil || got != id {
				t.Fatalf("Parse(%q, %s) = %d, %v; want %d", s, enc, got, err, id)
			}
		}
	})
}

func FuzzParseVariant(f *testing.F) {
	f.Add("53")
	f.Add("snowflake63")
	f.Add("")

	f.Fuzz(func(t *testing.T, s string) {
		v, err := ParseVariant(s)
		if err == nil && !v.Valid() {
			t.Fatalf("ParseVariant(%q) returned invalid variant %d", s, int(v))
		}
	})
}
