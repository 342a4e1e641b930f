package app

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	dbm "github.com/cosmos/cosmos-db"

	"cosmossdk.io/log"
	abci "github.com/cometbft/cometbft/abci/types"

	storetypes "cosmossdk.io/store/types"

	"github.com/cosmos/cosmos-sdk/baseapp"
	"github.com/cosmos/cosmos-sdk/client"
	"github.com/cosmos/cosmos-sdk/codec"
	authcodec "github.com/cosmos/cosmos-sdk/codec/address"
	codectypes "github.com/cosmos/cosmos-sdk/codec/types"
	"github.com/cosmos/cosmos-sdk/runtime"
	"github.com/cosmos/cosmos-sdk/server/api"
	"github.com/cosmos/cosmos-sdk/server/config"
	servertypes "github.com/cosmos/cosmos-sdk/server/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/cosmos/cosmos-sdk/types/module"
	"github.com/cosmos/cosmos-sdk/x/auth"
	authkeeper "github.com/cosmos/cosmos-sdk/x/auth/keeper"
	authtypes "github.com/cosmos/cosmos-sdk/x/auth/types"
	"github.com/cosmos/cosmos-sdk/x/bank"
	bankkeeper "github.com/cosmos/cosmos-sdk/x/bank/keeper"
	banktypes "github.com/cosmos/cosmos-sdk/x/bank/types"
	"github.com/cosmos/cosmos-sdk/x/consensus"
	consensuskeeper "github.com/cosmos/cosmos-sdk/x/consensus/keeper"
	consensustypes "github.com/cosmos/cosmos-sdk/x/consensus/types"
	"github.com/cosmos/cosmos-sdk/x/genutil"
	genutiltypes "github.com/cosmos/cosmos-sdk/x/genutil/types"
	govtypes "github.com/cosmos/cosmos-sdk/x/gov/types"
	"github.com/cosmos/cosmos-sdk/x/params"
	paramskeeper "github.com/cosmos/cosmos-sdk/x/params/keeper"
	paramstypes "github.com/cosmos/cosmos-sdk/x/params/types"
	"github.com/cosmos/cosmos-sdk/x/staking"
	stakingkeeper "github.com/cosmos/cosmos-sdk/x/staking/keeper"
	stakingtypes "github.com/cosmos/cosmos-sdk/x/staking/types"
	"github.com/cosmos/gogoproto/grpc"

	// Basis protocol modules
	boardroomkeeper "github.com/Fsud/basiscash-protocol/x/boardroom/keeper"
	boardroomtypes "github.com/Fsud/basiscash-protocol/x/boardroom/types"
	fundkeeper "github.com/Fsud/basiscash-protocol/x/fund/keeper"
	fundtypes "github.com/Fsud/basiscash-protocol/x/fund/types"
	ledgerkeeper "github.com/Fsud/basiscash-protocol/x/ledger/keeper"
	ledgertypes "github.com/Fsud/basiscash-protocol/x/ledger/types"
	oraclekeeper "github.com/Fsud/basiscash-protocol/x/oracle/keeper"
	oracletypes "github.com/Fsud/basiscash-protocol/x/oracle/types"
	"github.com/Fsud/basiscash-protocol/x/treasury"
	treasurykeeper "github.com/Fsud/basiscash-protocol/x/treasury/keeper"
	treasurytypes "github.com/Fsud/basiscash-protocol/x/treasury/types"
)

const (
	// Name is the name of the application
	Name = "basis"
	// AccountAddressPrefix is the prefix for account addresses
	AccountAddressPrefix = "basis"
	// StakingBondDenom is the staking token denomination
	StakingBondDenom = "ubas"
)

var (
	// DefaultNodeHome is the default home directory for the application
	DefaultNodeHome string

	// ModuleBasics defines the module BasicManager that is in charge of setting up basic,
	// non-dependant module elements, such as codec registration and genesis verification.
	ModuleBasics = module.NewBasicManager(
		auth.AppModuleBasic{},
		genutil.NewAppModuleBasic(genutiltypes.DefaultMessageValidator),
		bank.AppModuleBasic{},
		staking.AppModuleBasic{},
		params.AppModuleBasic{},
		consensus.AppModuleBasic{},
		treasury.AppModuleBasic{},
	)
)

func init() {
	userHomeDir, err := os.UserHomeDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "WARNING: cannot resolve home directory: %v\n", err)
		userHomeDir = "."
	}
	DefaultNodeHome = filepath.Join(userHomeDir, "."+Name)
}

// BasisApp runs the Basis Cash monetary-policy protocol as a Cosmos SDK chain
type BasisApp struct {
	*baseapp.BaseApp

	legacyAmino       *codec.LegacyAmino
	appCodec          codec.Codec
	txConfig          client.TxConfig
	interfaceRegistry codectypes.InterfaceRegistry

	// keys to access the substores
	keys  map[string]*storetypes.KVStoreKey
	tkeys map[string]*storetypes.TransientStoreKey

	// keepers - standard Cosmos SDK modules
	AccountKeeper         authkeeper.AccountKeeper
	BankKeeper            bankkeeper.Keeper
	StakingKeeper         *stakingkeeper.Keeper
	ParamsKeeper          paramskeeper.Keeper
	ConsensusParamsKeeper consensuskeeper.Keeper

	// keepers - Basis protocol modules
	LedgerKeeper    ledgerkeeper.Keeper
	OracleKeeper    oraclekeeper.Keeper
	FundKeeper      fundkeeper.Keeper
	BoardroomKeeper boardroomkeeper.Keeper
	TreasuryKeeper  treasurykeeper.Keeper

	// Module manager
	ModuleManager *module.Manager

	// Module configurator
	configurator module.Configurator
}

// New returns a reference to an initialized BasisApp.
func New(
	logger log.Logger,
	db dbm.DB,
	traceStore io.Writer,
	loadLatest bool,
	appOpts servertypes.AppOptions,
	baseAppOptions ...func(*baseapp.BaseApp),
) *BasisApp {
	// Initialize encodings
	encodingConfig := MakeEncodingConfig()
	appCodec := encodingConfig.Codec
	legacyAmino := encodingConfig.Amino
	interfaceRegistry := encodingConfig.InterfaceRegistry
	txConfig := encodingConfig.TxConfig

	// Create base application
	bApp := baseapp.NewBaseApp(
		Name,
		logger,
		db,
		txConfig.TxDecoder(),
		baseAppOptions...,
	)
	bApp.SetCommitMultiStoreTracer(traceStore)
	bApp.SetVersion(Version)
	bApp.SetInterfaceRegistry(interfaceRegistry)
	bApp.SetTxEncoder(txConfig.TxEncoder())

	// Initialize store keys
	keys := storetypes.NewKVStoreKeys(
		authtypes.StoreKey,
		banktypes.StoreKey,
		stakingtypes.StoreKey,
		paramstypes.StoreKey,
		consensustypes.StoreKey,
		// Basis protocol store keys
		ledgertypes.StoreKey,
		oracletypes.StoreKey,
		fundtypes.StoreKey,
		boardroomtypes.StoreKey,
		treasurytypes.StoreKey,
	)
	tkeys := storetypes.NewTransientStoreKeys(paramstypes.TStoreKey)

	// Create the application
	app := &BasisApp{
		BaseApp:           bApp,
		legacyAmino:       legacyAmino,
		appCodec:          appCodec,
		txConfig:          txConfig,
		interfaceRegistry: interfaceRegistry,
		keys:              keys,
		tkeys:             tkeys,
	}

	// Initialize params keeper and subspaces
	app.ParamsKeeper = initParamsKeeper(
		appCodec,
		legacyAmino,
		keys[paramstypes.StoreKey],
		tkeys[paramstypes.TStoreKey],
	)

	// Set the BaseApp's parameter store
	app.ConsensusParamsKeeper = consensuskeeper.NewKeeper(
		appCodec,
		runtime.NewKVStoreService(keys[consensustypes.StoreKey]),
		authtypes.NewModuleAddress(govtypes.ModuleName).String(),
		runtime.EventService{},
	)
	bApp.SetParamStore(app.ConsensusParamsKeeper.ParamsStore)

	// Initialize keepers for standard modules
	app.initStandardKeepers(keys, appCodec)

	// Initialize Basis protocol keepers
	app.initProtocolKeepers(keys, appCodec)

	// Create module manager with all modules
	app.setupModuleManager()
	app.configurator = module.NewConfigurator(app.appCodec, app.MsgServiceRouter(), app.GRPCQueryRouter())
	app.ModuleManager.RegisterServices(app.configurator)

	// Initialize stores
	app.MountKVStores(keys)
	app.MountTransientStores(tkeys)

	// Initialize BaseApp
	app.SetInitChainer(app.InitChainer)
	app.SetBeginBlocker(app.BeginBlocker)
	app.SetEndBlocker(app.EndBlocker)

	// Set ante handler
	app.SetAnteHandler(NewAnteHandler(app))

	if loadLatest {
		if err := app.LoadLatestVersion(); err != nil {
			logger.Error("failed to load latest version", "error", err)
			panic(err)
		}
	}

	return app
}

// initStandardKeepers initializes all standard Cosmos SDK keepers
func (app *BasisApp) initStandardKeepers(
	keys map[string]*storetypes.KVStoreKey,
	appCodec codec.Codec,
) {
	// Account keeper
	app.AccountKeeper = authkeeper.NewAccountKeeper(
		appCodec,
		runtime.NewKVStoreService(keys[authtypes.StoreKey]),
		authtypes.ProtoBaseAccount,
		maccPerms,
		authcodec.NewBech32Codec(AccountAddressPrefix),
		AccountAddressPrefix,
		authtypes.NewModuleAddress(govtypes.ModuleName).String(),
	)

	// Bank keeper
	app.BankKeeper = bankkeeper.NewBaseKeeper(
		appCodec,
		runtime.NewKVStoreService(keys[banktypes.StoreKey]),
		app.AccountKeeper,
		BlockedAddresses(),
		authtypes.NewModuleAddress(govtypes.ModuleName).String(),
		app.Logger(),
	)

	// Staking keeper
	app.StakingKeeper = stakingkeeper.NewKeeper(
		appCodec,
		runtime.NewKVStoreService(keys[stakingtypes.StoreKey]),
		app.AccountKeeper,
		app.BankKeeper,
		authtypes.NewModuleAddress(govtypes.ModuleName).String(),
		authcodec.NewBech32Codec(sdk.GetConfig().GetBech32ValidatorAddrPrefix()),
		authcodec.NewBech32Codec(sdk.GetConfig().GetBech32ConsensusAddrPrefix()),
	)
}

// initProtocolKeepers initializes the Basis protocol keepers. The treasury
// sits on top: it operates the three asset ledgers, consults the oracle pair
// and routes seigniorage into the boardroom and the fund.
func (app *BasisApp) initProtocolKeepers(
	keys map[string]*storetypes.KVStoreKey,
	appCodec codec.Codec,
) {
	authority := authtypes.NewModuleAddress(govtypes.ModuleName).String()

	app.LedgerKeeper = ledgerkeeper.NewKeeper(
		appCodec,
		runtime.NewKVStoreService(keys[ledgertypes.StoreKey]),
		app.BankKeeper,
		authority,
	)

	app.OracleKeeper = oraclekeeper.NewKeeper(
		appCodec,
		runtime.NewKVStoreService(keys[oracletypes.StoreKey]),
		authority,
	)

	app.FundKeeper = fundkeeper.NewKeeper(
		appCodec,
		runtime.NewKVStoreService(keys[fundtypes.StoreKey]),
		app.LedgerKeeper,
		authority,
	)

	app.BoardroomKeeper = boardroomkeeper.NewKeeper(
		appCodec,
		runtime.NewKVStoreService(keys[boardroomtypes.StoreKey]),
		app.LedgerKeeper,
		authority,
	)

	app.TreasuryKeeper = treasurykeeper.NewKeeper(
		appCodec,
		runtime.NewKVStoreService(keys[treasurytypes.StoreKey]),
		app.LedgerKeeper,
		app.OracleKeeper,
		app.BoardroomKeeper,
		app.FundKeeper,
		authority,
	)
}

// setupModuleManager creates and configures the module manager
func (app *BasisApp) setupModuleManager() {
	app.ModuleManager = module.NewManager(
		genutil.NewAppModule(app.AccountKeeper, app.StakingKeeper, app, app.txConfig),
		auth.NewAppModule(app.appCodec, app.AccountKeeper, nil, app.GetSubspace(authtypes.ModuleName)),
		bank.NewAppModule(app.appCodec, app.BankKeeper, app.AccountKeeper, app.GetSubspace(banktypes.ModuleName)),
		staking.NewAppModule(app.appCodec, app.StakingKeeper, app.AccountKeeper, app.BankKeeper, app.GetSubspace(stakingtypes.ModuleName)),
		params.NewAppModule(app.ParamsKeeper),
		consensus.NewAppModule(app.appCodec, app.ConsensusParamsKeeper),
		// Basis protocol modules
		treasury.NewAppModule(app.appCodec, app.TreasuryKeeper),
	)

	// Set order of module operations
	app.ModuleManager.SetOrderBeginBlockers(
		stakingtypes.ModuleName,
		authtypes.ModuleName,
		banktypes.ModuleName,
		genutiltypes.ModuleName,
		paramstypes.ModuleName,
		consensustypes.ModuleName,
		treasurytypes.ModuleName,
	)

	app.ModuleManager.SetOrderEndBlockers(
		stakingtypes.ModuleName,
		authtypes.ModuleName,
		banktypes.ModuleName,
		genutiltypes.ModuleName,
		paramstypes.ModuleName,
		consensustypes.ModuleName,
		treasurytypes.ModuleName,
	)

	app.ModuleManager.SetOrderInitGenesis(
		authtypes.ModuleName,
		banktypes.ModuleName,
		stakingtypes.ModuleName,
		genutiltypes.ModuleName,
		paramstypes.ModuleName,
		consensustypes.ModuleName,
		treasurytypes.ModuleName,
	)
}

// Name returns the name of the App
func (app *BasisApp) Name() string { return Name }

// BeginBlocker application updates at every begin block
func (app *BasisApp) BeginBlocker(ctx sdk.Context) (sdk.BeginBlock, error) {
	return app.ModuleManager.BeginBlock(ctx)
}

// EndBlocker application updates at every end block
func (app *BasisApp) EndBlocker(ctx sdk.Context) (sdk.EndBlock, error) {
	return app.ModuleManager.EndBlock(ctx)
}

// InitChainer application update at chain initialization
func (app *BasisApp) InitChainer(ctx sdk.Context, req *abci.RequestInitChain) (*abci.ResponseInitChain, error) {
	var genesisState GenesisState
	if err := json.Unmarshal(req.AppStateBytes, &genesisState); err != nil {
		return nil, err
	}
	resp, err := app.ModuleManager.InitGenesis(ctx, app.appCodec, genesisState)
	if err != nil {
		return nil, err
	}
	if err := app.initProtocolGenesis(ctx, genesisState); err != nil {
		return nil, err
	}
	return resp, nil
}

// initProtocolGenesis seeds the keeper-only protocol modules. They carry no
// AppModule of their own; their state is small enough to hand-wire here the
// same way the treasury hands them work at runtime.
func (app *BasisApp) initProtocolGenesis(ctx sdk.Context, genesisState GenesisState) error {
	if raw, ok := genesisState[ledgertypes.ModuleName]; ok {
		var gs ledgertypes.GenesisState
		if err := json.Unmarshal(raw, &gs); err != nil {
			return fmt.Errorf("ledger genesis: %w", err)
		}
		if err := app.LedgerKeeper.InitGenesis(ctx, &gs); err != nil {
			return err
		}
	}
	if raw, ok := genesisState[oracletypes.ModuleName]; ok {
		var gs oracletypes.GenesisState
		if err := json.Unmarshal(raw, &gs); err != nil {
			return fmt.Errorf("oracle genesis: %w", err)
		}
		if err := app.OracleKeeper.InitGenesis(ctx, &gs); err != nil {
			return err
		}
	}
	if raw, ok := genesisState[fundtypes.ModuleName]; ok {
		var gs fundtypes.GenesisState
		if err := json.Unmarshal(raw, &gs); err != nil {
			return fmt.Errorf("fund genesis: %w", err)
		}
		if err := app.FundKeeper.InitGenesis(ctx, &gs); err != nil {
			return err
		}
	}
	if raw, ok := genesisState[boardroomtypes.ModuleName]; ok {
		var gs boardroomtypes.GenesisState
		if err := json.Unmarshal(raw, &gs); err != nil {
			return fmt.Errorf("boardroom genesis: %w", err)
		}
		if err := app.BoardroomKeeper.InitGenesis(ctx, &gs); err != nil {
			return err
		}
	}
	return nil
}

// LoadHeight loads a particular height
func (app *BasisApp) LoadHeight(height int64) error {
	return app.LoadVersion(height)
}

// LegacyAmino returns the legacy amino codec
func (app *BasisApp) LegacyAmino() *codec.LegacyAmino {
	return app.legacyAmino
}

// AppCodec returns the app codec
func (app *BasisApp) AppCodec() codec.Codec {
	return app.appCodec
}

// InterfaceRegistry returns the interface registry
func (app *BasisApp) InterfaceRegistry() codectypes.InterfaceRegistry {
	return app.interfaceRegistry
}

// TxConfig returns the tx config
func (app *BasisApp) TxConfig() client.TxConfig {
	return app.txConfig
}

// GetSubspace returns a param subspace for a given module name
func (app *BasisApp) GetSubspace(moduleName string) paramstypes.Subspace {
	subspace, _ := app.ParamsKeeper.GetSubspace(moduleName)
	return subspace
}

// RegisterAPIRoutes registers all application module routes with the provided API server
func (app *BasisApp) RegisterAPIRoutes(apiSvr *api.Server, apiConfig config.APIConfig) {
	ModuleBasics.RegisterGRPCGatewayRoutes(apiSvr.ClientCtx, apiSvr.GRPCGatewayRouter)
}

// GetMaccPerms returns a copy of the module account permissions
func GetMaccPerms() map[string][]string {
	dupMaccPerms := make(map[string][]string)
	for k, v := range maccPerms {
		dupMaccPerms[k] = v
	}
	return dupMaccPerms
}

// BlockedAddresses returns all the app's blocked account addresses
func BlockedAddresses() map[string]bool {
	modAccAddrs := make(map[string]bool)
	for acc := range GetMaccPerms() {
		modAccAddrs[authtypes.NewModuleAddress(acc).String()] = true
	}
	// The treasury, boardroom and fund accounts receive user transfers
	// (bond redemptions, stakes, deposits) and must stay reachable.
	delete(modAccAddrs, authtypes.NewModuleAddress(treasurytypes.ModuleName).String())
	delete(modAccAddrs, authtypes.NewModuleAddress(boardroomtypes.ModuleName).String())
	delete(modAccAddrs, authtypes.NewModuleAddress(fundtypes.ModuleName).String())
	return modAccAddrs
}

// initParamsKeeper initializes the params keeper and subspaces
func initParamsKeeper(
	appCodec codec.Codec,
	legacyAmino *codec.LegacyAmino,
	key storetypes.StoreKey,
	tkey storetypes.StoreKey,
) paramskeeper.Keeper {
	paramsKeeper := paramskeeper.NewKeeper(appCodec, legacyAmino, key, tkey)

	// Register param subspaces
	paramsKeeper.Subspace(authtypes.ModuleName)
	paramsKeeper.Subspace(banktypes.ModuleName)
	paramsKeeper.Subspace(stakingtypes.ModuleName)
	// Basis protocol modules
	paramsKeeper.Subspace(ledgertypes.ModuleName)
	paramsKeeper.Subspace(oracletypes.ModuleName)
	paramsKeeper.Subspace(treasurytypes.ModuleName)

	return paramsKeeper
}

// maccPerms is a map of module account permissions
var maccPerms = map[string][]string{
	authtypes.FeeCollectorName:     nil,
	stakingtypes.BondedPoolName:    {authtypes.Burner, authtypes.Staking},
	stakingtypes.NotBondedPoolName: {authtypes.Burner, authtypes.Staking},
	govtypes.ModuleName:            {authtypes.Burner},
	// The ledger module mints and burns the cash/bond/share denoms on
	// the treasury's behalf.
	ledgertypes.ModuleName:    {authtypes.Minter, authtypes.Burner},
	treasurytypes.ModuleName:  nil,
	boardroomtypes.ModuleName: nil,
	fundtypes.ModuleName:      nil,
}

// Version is the application version
const Version = "0.1.0"

// GenesisState represents the genesis state of the blockchain
type GenesisState map[string]json.RawMessage

// NewDefaultGenesisState generates the default state for the application
func NewDefaultGenesisState(cdc codec.Codec) GenesisState {
	genesis := ModuleBasics.DefaultGenesis(cdc)
	for name, gs := range map[string]interface{}{
		ledgertypes.ModuleName:    ledgertypes.DefaultGenesis(),
		oracletypes.ModuleName:    oracletypes.DefaultGenesis(),
		fundtypes.ModuleName:      fundtypes.DefaultGenesis(),
		boardroomtypes.ModuleName: boardroomtypes.DefaultGenesis(),
	} {
		bz, err := json.Marshal(gs)
		if err != nil {
			panic(err)
		}
		genesis[name] = bz
	}
	return genesis
}

// RegisterNodeService implements the Application.RegisterNodeService method
func (app *BasisApp) RegisterNodeService(clientCtx client.Context, cfg config.Config) {
}

// RegisterTendermintService implements the Application.RegisterTendermintService method
func (app *BasisApp) RegisterTendermintService(clientCtx client.Context) {
}

// RegisterTxService implements the Application.RegisterTxService method
func (app *BasisApp) RegisterTxService(clientCtx client.Context) {
}

// RegisterGRPCServer implements the Application.RegisterGRPCServer method
func (app *BasisApp) RegisterGRPCServer(grpcServer grpc.Server) {
}

// ExportAppStateAndValidators exports the application state for genesis export
func (app *BasisApp) ExportAppStateAndValidators(
	forZeroHeight bool,
	jailAllowedAddrs []string,
	modulesToExport []string,
) (servertypes.ExportedApp, error) {
	ctx := app.NewContext(true)

	genState, err := app.ModuleManager.ExportGenesis(ctx, app.appCodec)
	if err != nil {
		return servertypes.ExportedApp{}, err
	}

	for name, export := range map[string]func() (interface{}, error){
		ledgertypes.ModuleName: func() (interface{}, error) { return app.LedgerKeeper.ExportGenesis(ctx) },
		oracletypes.ModuleName: func() (interface{}, error) { return app.OracleKeeper.ExportGenesis(ctx) },
		fundtypes.ModuleName:   func() (interface{}, error) { return app.FundKeeper.ExportGenesis(ctx) },
		boardroomtypes.ModuleName: func() (interface{}, error) {
			return app.BoardroomKeeper.ExportGenesis(ctx)
		},
	} {
		gs, err := export()
		if err != nil {
			return servertypes.ExportedApp{}, err
		}
		bz, err := json.Marshal(gs)
		if err != nil {
			return servertypes.ExportedApp{}, err
		}
		genState[name] = bz
	}

	appState, err := json.MarshalIndent(genState, "", "  ")
	if err != nil {
		return servertypes.ExportedApp{}, err
	}

	return servertypes.ExportedApp{
		AppState:        appState,
		Height:          app.LastBlockHeight(),
		ConsensusParams: app.GetConsensusParams(ctx),
	}, nil
}
