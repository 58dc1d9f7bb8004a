package geyser

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"
)

func filled(b byte) Signature {
	var s Signature
	for i := range s {
		s[i] = b
	}
	return s
}

func TestSignatureZeroSentinel(t *testing.T) {
	if !(Signature{}).IsZero() {
		t.Fatalf("zero value should be the sentinel")
	}
	s := Signature{}
	s[SignatureLen-1] = 1
	if s.IsZero() {
		t.Fatalf("signature with a non-zero byte must not be the sentinel")
	}
}

func TestSignatureTextRoundTrip(t *testing.T) {
	for _, s := range []Signature{filled(0xAA), filled(0x01), {}} {
		str := s.String()
		got, err := ParseSignature(str)
		if err != nil {
			t.Fatalf("ParseSignature(%q): %v", str, err)
		}
		if got != s {
			t.Fatalf("round trip mismatch for %q", str)
		}
	}
	if got := (Signature{}).String(); got != strings.Repeat("1", SignatureLen) {
		t.Fatalf("zero signature renders as %q", got)
	}
}

func TestParseSignatureRejects(t *testing.T) {
	for _, in := range []string{"", "0OIl", "3yZe7d"} {
		if _, err := ParseSignature(in); err == nil {
			t.Fatalf("ParseSignature(%q) should fail", in)
		}
	}
	if _, err := SignatureFromBytes(make([]byte, 32)); err == nil {
		t.Fatalf("32 bytes should be rejected")
	}
}

func TestSignatureJSONUsesText(t *testing.T) {
	s := filled(0x07)
	b, err := json.Marshal(struct {
		Sig Signature `json:"sig"`
	}{s})
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Contains(b, []byte(s.String())) {
		t.Fatalf("expected base58 in %s", b)
	}
	var back struct {
		Sig Signature `json:"sig"`
	}
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatal(err)
	}
	if back.Sig != s {
		t.Fatalf("json round trip mismatch")
	}
}

func TestByteListJSONIsNumberArray(t *testing.T) {
	b, err := json.Marshal(CompiledInstruction{ProgramIDIndex: 1, Accounts: ByteList{2, 3}, Data: ByteList{9, 9}})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"program_id_index":1,"accounts":[2,3],"data":[9,9]}`
	if string(b) != want {
		t.Fatalf("got %s want %s", b, want)
	}

	var bl ByteList
	if err := json.Unmarshal([]byte(`[0,255,16]`), &bl); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(bl, []byte{0, 255, 16}) {
		t.Fatalf("decoded %v", bl)
	}
	if err := json.Unmarshal([]byte(`[256]`), &bl); err == nil {
		t.Fatalf("expected out of range error")
	}
	if err := json.Unmarshal([]byte(`null`), &bl); err != nil || bl != nil {
		t.Fatalf("null should decode to nil, got %v err=%v", bl, err)
	}
}

func TestInnerInstructionsAbsentVsEmptyJSON(t *testing.T) {
	absent, _ := json.Marshal(TransactionStatusMeta{})
	empty, _ := json.Marshal(TransactionStatusMeta{InnerInstructions: InnerInstructionSet{}})
	if !bytes.Contains(absent, []byte(`"inner_instructions":null`)) {
		t.Fatalf("absent set should encode as null: %s", absent)
	}
	if !bytes.Contains(empty, []byte(`"inner_instructions":[]`)) {
		t.Fatalf("empty set should encode as []: %s", empty)
	}
}

func TestNormalizeTransaction(t *testing.T) {
	sig := filled(0x42)
	set := InnerInstructionSet{{Index: 0, Instructions: []InnerInstruction{{
		Instruction: CompiledInstruction{ProgramIDIndex: 1, Accounts: ByteList{2, 3}, Data: ByteList{9, 9}},
	}}}}

	v1 := &ReplicaTransactionInfoV1{Signature: sig, IsVote: true, Meta: TransactionStatusMeta{InnerInstructions: set}}
	v2 := &ReplicaTransactionInfoV2{Signature: sig, Index: 7, Meta: TransactionStatusMeta{InnerInstructions: set}}

	e1, err := NormalizeTransaction(v1)
	if err != nil {
		t.Fatalf("v1: %v", err)
	}
	if e1.Signature != sig || !e1.IsVote || e1.Index != -1 || e1.Version != "0.0.1" {
		t.Fatalf("v1 normalized wrong: %+v", e1)
	}
	if !reflect.DeepEqual(e1.Meta.InnerInstructions, set) {
		t.Fatalf("v1 inner instructions lost")
	}

	e2, err := NormalizeTransaction(v2)
	if err != nil {
		t.Fatalf("v2: %v", err)
	}
	if e2.Signature != sig || e2.IsVote || e2.Index != 7 || e2.Version != "0.0.2" {
		t.Fatalf("v2 normalized wrong: %+v", e2)
	}
	if !reflect.DeepEqual(e2.Meta.InnerInstructions, set) {
		t.Fatalf("v2 inner instructions lost")
	}
}

func TestNormalizeTransactionUnsupported(t *testing.T) {
	var nilV1 *ReplicaTransactionInfoV1
	for _, v := range []ReplicaTransactionInfoVersions{nil, nilV1} {
		if _, err := NormalizeTransaction(v); !errors.Is(err, ErrUnsupportedVersion) {
			t.Fatalf("expected ErrUnsupportedVersion for %T, got %v", v, err)
		}
	}
}

func TestCustomWrapsAndUnwraps(t *testing.T) {
	if Custom(nil) != nil {
		t.Fatalf("Custom(nil) must be nil")
	}
	cause := errors.New("boom")
	err := Custom(cause)
	var pe *PluginError
	if !errors.As(err, &pe) || !errors.Is(err, cause) {
		t.Fatalf("expected *PluginError wrapping cause, got %v", err)
	}
}
