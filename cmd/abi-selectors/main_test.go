package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestSelectors(t *testing.T) {
	got := map[string]string{}
	for _, s := range selectors() {
		got[s.Signature] = s.ID
	}

	want := map[string]string{
		"Error(string)":  "0x08c379a0",
		"Panic(uint256)": "0x4e487b71",
	}
	for sig, id := range want {
		if got[sig] != id {
			t.Fatalf("%s: expected %s got %s", sig, id, got[sig])
		}
	}
	if _, ok := got["invest(uint256)"]; !ok {
		t.Fatalf("invest selector missing: %v", got)
	}
	if _, ok := got["getStartup(uint256)"]; !ok {
		t.Fatalf("getStartup selector missing: %v", got)
	}
}

func TestPrintSelectors(t *testing.T) {
	var out bytes.Buffer
	printSelectors(&out)
	if !strings.Contains(out.String(), "Error(string): 0x08c379a0") {
		t.Fatalf("unexpected output: %s", out.String())
	}
}
