package storage

import (
	"errors"
	"testing"

	"theoryea/internal/model"
)

func TestRunCodecRoundTrip(t *testing.T) {
	run := sampleRun("run-1", "2026-01-01T00:00:00Z", 12.5)
	data, err := EncodeRun(run)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeRun(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded != run {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", decoded, run)
	}
}

func TestDecodeRunRejectsVersionMismatch(t *testing.T) {
	run := sampleRun("run-1", "2026-01-01T00:00:00Z", 1)
	run.CodecVersion = CurrentCodecVersion + 1
	data, err := EncodeRun(run)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := DecodeRun(data); !errors.Is(err, ErrVersionMismatch) {
		t.Fatalf("expected version mismatch, got %v", err)
	}
}

func TestDecodeRunRejectsGarbage(t *testing.T) {
	if _, err := DecodeRun([]byte("{")); err == nil {
		t.Fatal("expected decode error")
	}
	if _, err := DecodeTrace([]byte("[{")); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestTraceCodecKeepsLambda(t *testing.T) {
	trace := []model.TracePoint{{Generation: 3, Evaluations: 40, BestFitness: 9, Lambda: 2.25}}
	data, err := EncodeTrace(trace)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	decoded, err := DecodeTrace(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(decoded) != 1 || decoded[0] != trace[0] {
		t.Fatalf("unexpected trace: %+v", decoded)
	}
}
