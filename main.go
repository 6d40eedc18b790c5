package main

import (
	"os"
	"strconv"

	"github.com/HamzaTakiX/Blockchain-project/contract"

	"github.com/hyperledger/fabric-chaincode-go/shim"
	"github.com/hyperledger/fabric-contract-api-go/contractapi"
	"github.com/hyperledger/fabric-contract-api-go/metadata"
	"github.com/hyperledger/fabric/common/flogging"
)

var logger = flogging.MustGetLogger("diplomacert")

// Version is stamped at build time.
var Version = "dev"

type serverConfig struct {
	CCID    string
	Address string
}

func main() {
	registry := &contract.DiplomaRegistryContract{}
	registry.Info = metadata.InfoMetadata{
		Title:       "DiplomaRegistry",
		Description: "Admin-issued diploma certifications keyed by student address",
		Version:     Version,
	}

	cc, err := contractapi.NewChaincode(registry)
	if err != nil {
		panic("Error creating DiplomaRegistryContract: " + err.Error())
	}
	cc.Info.Title = "diplomacert"
	cc.Info.Version = Version

	cfg := serverConfig{
		CCID:    os.Getenv("CHAINCODE_ID"),
		Address: os.Getenv("CHAINCODE_SERVER_ADDRESS"),
	}

	// Chaincode-as-a-service when a listen address is configured, the
	// classic peer-launched mode otherwise.
	if cfg.Address == "" {
		if err := cc.Start(); err != nil {
			panic("Error starting chaincode: " + err.Error())
		}
		return
	}

	tlsProps, err := getTLSProperties()
	if err != nil {
		panic("Error loading chaincode TLS material: " + err.Error())
	}
	server := &shim.ChaincodeServer{
		CCID:     cfg.CCID,
		Address:  cfg.Address,
		CC:       cc,
		TLSProps: tlsProps,
	}
	logger.Infof("Starting chaincode server %s on %s", cfg.CCID, cfg.Address)
	if err := server.Start(); err != nil {
		panic("Error starting chaincode server: " + err.Error())
	}
}

func getTLSProperties() (shim.TLSProperties, error) {
	disabled, _ := strconv.ParseBool(getEnvOrDefault("CHAINCODE_TLS_DISABLED", "true"))
	if disabled {
		return shim.TLSProperties{Disabled: true}, nil
	}

	key, err := os.ReadFile(os.Getenv("CHAINCODE_TLS_KEY"))
	if err != nil {
		return shim.TLSProperties{}, err
	}
	cert, err := os.ReadFile(os.Getenv("CHAINCODE_TLS_CERT"))
	if err != nil {
		return shim.TLSProperties{}, err
	}

	var clientCA []byte
	if path := os.Getenv("CHAINCODE_CLIENT_CA_CERT"); path != "" {
		if clientCA, err = os.ReadFile(path); err != nil {
			return shim.TLSProperties{}, err
		}
	}

	return shim.TLSProperties{
		Disabled:      false,
		Key:           key,
		Cert:          cert,
		ClientCACerts: clientCA,
	}, nil
}

func getEnvOrDefault(name, def string) string {
	if v, ok := os.LookupEnv(name); ok && v != "" {
		return v
	}
	return def
}
