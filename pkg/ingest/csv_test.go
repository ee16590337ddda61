package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sablier-labs/merkle-api-go/pkg/chain"
)

func TestParseCSVValid(t *testing.T) {
	input := strings.Join([]string{
		"address,amount",
		"0x0000000000000000000000000000000000000001,100",
		"0x0000000000000000000000000000000000000002,250.5",
		"0x0000000000000000000000000000000000000003,0.001",
	}, "\n")

	result, err := ParseCSV(strings.NewReader(input), chain.Evm, 3)
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	require.Len(t, result.Recipients, 3)

	// Amounts are scaled by 10^decimals into the smallest denomination.
	assert.Equal(t, uint64(100000), result.Recipients[0].Amount)
	assert.Equal(t, uint64(250500), result.Recipients[1].Amount)
	assert.Equal(t, uint64(1), result.Recipients[2].Amount)
	assert.Equal(t, uint64(350501), result.TotalAmount)
}

func TestParseCSVZeroDecimals(t *testing.T) {
	input := "address,amount\n0x0000000000000000000000000000000000000001,42\n"

	result, err := ParseCSV(strings.NewReader(input), chain.Evm, 0)
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	assert.Equal(t, uint64(42), result.Recipients[0].Amount)
}

func TestParseCSVHeaderCaseInsensitive(t *testing.T) {
	input := "Address,AMOUNT\n0x0000000000000000000000000000000000000001,1\n"

	result, err := ParseCSV(strings.NewReader(input), chain.Evm, 0)
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
}

func TestParseCSVBadHeader(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "wrong first column", input: "wallet,amount\n"},
		{name: "wrong second column", input: "address,value\n"},
		{name: "single column", input: "address\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := ParseCSV(strings.NewReader(tt.input), chain.Evm, 0)
			require.NoError(t, err)
			require.Len(t, result.Errors, 1)
			assert.Equal(t, 1, result.Errors[0].Row)
		})
	}
}

func TestParseCSVEmptyFile(t *testing.T) {
	result, err := ParseCSV(strings.NewReader(""), chain.Evm, 0)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Message, "empty")
}

func TestParseCSVCollectsAllRowErrors(t *testing.T) {
	// One pass reports everything wrong with the file, addressed by 1-based
	// row numbers, and valid rows after a bad one are still parsed.
	input := strings.Join([]string{
		"address,amount",
		"0x0000000000000000000000000000000000000001,100", // row 2, ok
		"not-an-address,100",                             // row 3, bad address
		"0x0000000000000000000000000000000000000002,0",   // row 4, zero amount
		"0x0000000000000000000000000000000000000001,50",  // row 5, duplicate of row 2
		"0x0000000000000000000000000000000000000003,abc", // row 6, bad amount
		"0x0000000000000000000000000000000000000004,75",  // row 7, ok
	}, "\n")

	result, err := ParseCSV(strings.NewReader(input), chain.Evm, 0)
	require.NoError(t, err)

	require.Len(t, result.Errors, 4)
	assert.Equal(t, 3, result.Errors[0].Row)
	assert.Equal(t, 4, result.Errors[1].Row)
	assert.Equal(t, 5, result.Errors[2].Row)
	assert.Contains(t, result.Errors[2].Message, "row 2")
	assert.Equal(t, 6, result.Errors[3].Row)

	require.Len(t, result.Recipients, 2)
	assert.Equal(t, uint64(175), result.TotalAmount)
}

func TestParseCSVInsufficientColumns(t *testing.T) {
	input := "address,amount\n0x0000000000000000000000000000000000000001\n"

	result, err := ParseCSV(strings.NewReader(input), chain.Evm, 0)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 2, result.Errors[0].Row)
	assert.Contains(t, result.Errors[0].Message, "insufficient columns")
}

func TestParseCSVDecimalsOutOfRange(t *testing.T) {
	_, err := ParseCSV(strings.NewReader("address,amount\n"), chain.Evm, -1)
	require.Error(t, err)

	_, err = ParseCSV(strings.NewReader("address,amount\n"), chain.Evm, 19)
	require.Error(t, err)
}

func TestParseCSVSolanaAddresses(t *testing.T) {
	addr := chain.Solana.Hash([]byte("sol-recipient"))
	input := "address,amount\n" + chain.Solana.FormatAddress(addr[:]) + ",10\n"

	result, err := ParseCSV(strings.NewReader(input), chain.Solana, 0)
	require.NoError(t, err)
	require.Empty(t, result.Errors)
	assert.Equal(t, uint64(10), result.Recipients[0].Amount)
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		decimals int
		want     uint64
		wantErr  bool
	}{
		{name: "integer", input: "100", decimals: 0, want: 100},
		{name: "scaled integer", input: "1", decimals: 18, want: 1_000_000_000_000_000_000},
		{name: "fraction", input: "1.5", decimals: 2, want: 150},
		{name: "full precision", input: "0.123456", decimals: 6, want: 123456},
		{name: "leading plus", input: "+5", decimals: 0, want: 5},
		{name: "zero", input: "0", decimals: 0, wantErr: true},
		{name: "zero with fraction", input: "0.0", decimals: 2, wantErr: true},
		{name: "negative", input: "-5", decimals: 0, wantErr: true},
		{name: "empty", input: "", decimals: 0, wantErr: true},
		{name: "not a number", input: "abc", decimals: 0, wantErr: true},
		{name: "bare dot", input: "1.", decimals: 2, wantErr: true},
		{name: "missing whole part", input: ".5", decimals: 2, wantErr: true},
		{name: "too many decimal places", input: "1.234", decimals: 2, wantErr: true},
		{name: "overflow", input: "99999999999999999999", decimals: 0, wantErr: true},
		{name: "overflow after scaling", input: "100", decimals: 18, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAmount(tt.input, tt.decimals)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
