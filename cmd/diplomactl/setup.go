package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/HamzaTakiX/Blockchain-project/artifact"
	"github.com/HamzaTakiX/Blockchain-project/gateway"
	"github.com/HamzaTakiX/Blockchain-project/metadata"
	"github.com/HamzaTakiX/Blockchain-project/session"

	"github.com/urfave/cli/v2"
)

func gatewayConfig(cmd *cli.Context) gateway.Config {
	return gateway.Config{
		MSPID:         cmd.String("msp-id"),
		CertPath:      cmd.String("cert-path"),
		KeyPath:       cmd.String("key-path"),
		TLSCertPath:   cmd.String("tls-cert-path"),
		PeerEndpoint:  cmd.String("peer-endpoint"),
		GatewayPeer:   cmd.String("gateway-peer"),
		ChannelName:   cmd.String("channel"),
		ChaincodeName: cmd.String("chaincode"),
	}
}

func openStore(cmd *cli.Context) (artifact.StoreFetcher, error) {
	switch kind := cmd.String("store"); kind {
	case "kubo":
		return artifact.NewKuboStore(artifact.KuboConfig{APIURL: cmd.String("kubo-api")}), nil
	case "file":
		return artifact.NewFileStore(cmd.String("store-dir"))
	case "memory":
		return artifact.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store %q (want kubo, file or memory)", kind)
	}
}

// openSession connects to the peer. The caller must close the connection.
func openSession(cmd *cli.Context) (*session.Session, *gateway.Connection, error) {
	store, err := openStore(cmd)
	if err != nil {
		return nil, nil, err
	}

	fetchers := []artifact.Fetcher{store}
	if local := cmd.String("local-gateway"); local != "" {
		fetchers = append(fetchers, artifact.NewGatewayFetcher(local, 3*time.Second))
	}
	fetchers = append(fetchers, artifact.NewGatewayFetcher(cmd.String("gateway"), 5*time.Second))
	resolver := metadata.NewResolver(metadata.ResolverOptions{Timeout: 5 * time.Second, CacheSize: 1024}, fetchers...)

	conn, err := gateway.Connect(gatewayConfig(cmd))
	if err != nil {
		return nil, nil, err
	}

	sess, err := session.New(session.Options{
		Contract:               conn.Contract(),
		Store:                  store,
		Gateway:                artifact.NewGateway(cmd.String("gateway")),
		Resolver:               resolver,
		IssuerName:             cmd.String("issuer-name"),
		AllowDegradedArtifacts: cmd.Bool("allow-degraded"),
	})
	if err != nil {
		conn.Close()
		return nil, nil, err
	}
	return sess, conn, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
