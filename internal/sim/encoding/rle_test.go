package encoding

import "testing"

func TestRLE_ChunkColumnRoundTrip(t *testing.T) {
	// A 16x16 floor of stone under air, as a chunk of height 4 encodes it.
	in := make([]uint16, 16*16*4)
	for i := 0; i < 256; i++ {
		in[i] = 3
	}
	in[300] = 12

	enc := EncodeRLE(in)
	out, err := DecodeRLE(enc, len(in))
	if err != nil {
		t.Fatalf("DecodeRLE: %v", err)
	}
	for i := range in {
		if out[i] != in[i] {
			t.Fatalf("mismatch at %d: got %d want %d", i, out[i], in[i])
		}
	}
	if len(enc) > 32 {
		t.Fatalf("encoding not compact: %d bytes", len(enc))
	}
}

func TestRLE_RejectsWrongLength(t *testing.T) {
	enc := EncodeRLE([]uint16{1, 1, 1, 2})
	if _, err := DecodeRLE(enc, 3); err == nil {
		t.Fatalf("overflowing run accepted")
	}
	if _, err := DecodeRLE(enc, 5); err == nil {
		t.Fatalf("short payload accepted")
	}
	if out, err := DecodeRLE(EncodeRLE(nil), 0); err != nil || len(out) != 0 {
		t.Fatalf("empty round trip: %v %v", out, err)
	}
}
