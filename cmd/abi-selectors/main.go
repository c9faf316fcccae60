package main

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/ethereum/go-ethereum/crypto"
	"venture-ledger.backend/internal/usecases"
)

// Selectors a revert payload can start with besides the contract's own methods
var revertSignatures = []string{
	"Error(string)",
	"Panic(uint256)",
}

type selector struct {
	Signature string
	ID        string
}

func selectors() []selector {
	out := make([]selector, 0, len(usecases.InvestmentContractABI.Methods)+len(revertSignatures))
	for _, m := range usecases.InvestmentContractABI.Methods {
		out = append(out, selector{Signature: m.Sig, ID: "0x" + hex.EncodeToString(m.ID)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Signature < out[j].Signature })

	for _, sig := range revertSignatures {
		hash := crypto.Keccak256([]byte(sig))
		out = append(out, selector{Signature: sig, ID: "0x" + hex.EncodeToString(hash[:4])})
	}
	return out
}

func printSelectors(w io.Writer) {
	for _, s := range selectors() {
		_, _ = fmt.Fprintf(w, "%s: %s\n", s.Signature, s.ID)
	}
}

func main() {
	printSelectors(os.Stdout)
}
