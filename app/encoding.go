package app

import (
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/codec"
	"github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/cosmos/cosmos-sdk/std"
	"github.com/cosmos/cosmos-sdk/x/auth/tx"

	treasurytypes "github.com/Fsud/basiscash-protocol/x/treasury/types"
)

// EncodingConfig specifies the concrete encoding types to use for the Basis app
type EncodingConfig struct {
	InterfaceRegistry types.InterfaceRegistry
	Codec             codec.Codec
	TxConfig          client.TxConfig
	Amino             *codec.LegacyAmino
}

// MakeEncodingConfig creates an EncodingConfig for the Basis app
func MakeEncodingConfig() EncodingConfig {
	amino := codec.NewLegacyAmino()
	interfaceRegistry := types.NewInterfaceRegistry()

	// Register standard Cosmos SDK types
	std.RegisterLegacyAminoCodec(amino)
	std.RegisterInterfaces(interfaceRegistry)

	// Register all module interfaces (including Msg services) to avoid
	// MsgServiceRouter panics when app.New() registers services.
	ModuleBasics.RegisterInterfaces(interfaceRegistry)

	treasurytypes.RegisterInterfaces(interfaceRegistry)
	treasurytypes.RegisterLegacyAminoCodec(amino)

	// Create the codec
	cdc := codec.NewProtoCodec(interfaceRegistry)

	// Create tx config
	txConfig := tx.NewTxConfig(cdc, tx.DefaultSignModes)

	return EncodingConfig{
		InterfaceRegistry: interfaceRegistry,
		Codec:             cdc,
		TxConfig:          txConfig,
		Amino:             amino,
	}
}
