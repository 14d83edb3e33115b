package payroll

import (
	"errors"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
)

// AddressValidator checks a payout destination and returns its canonical
// encoding, which is what gets stored and compared.
type AddressValidator interface {
	Validate(address string) (string, error)
}

// NetworkAddressValidator accepts bitcoin addresses for one network.
type NetworkAddressValidator struct {
	params *chaincfg.Params
}

func NewAddressValidator(network string) (*NetworkAddressValidator, error) {
	var params *chaincfg.Params
	switch strings.ToLower(strings.TrimSpace(network)) {
	case "", "mainnet", "main":
		params = &chaincfg.MainNetParams
	case "testnet", "testnet3":
		params = &chaincfg.TestNet3Params
	case "regtest":
		params = &chaincfg.RegressionNetParams
	case "signet":
		params = &chaincfg.SigNetParams
	default:
		return nil, fmt.Errorf("unknown bitcoin network: %s", network)
	}
	return &NetworkAddressValidator{params: params}, nil
}

// Validate decodes address for the configured network. Bech32 addresses are
// case-insensitive, so the canonical form is the lower-case encoding.
func (v *NetworkAddressValidator) Validate(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", errors.New("empty address")
	}
	addr, err := btcutil.DecodeAddress(address, v.params)
	if err != nil {
		return "", err
	}
	if !addr.IsForNet(v.params) {
		return "", fmt.Errorf("address is not for %s", v.params.Name)
	}
	return addr.EncodeAddress(), nil
}
