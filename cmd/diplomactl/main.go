package main

import (
	"fmt"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v2"
)

var Version = "dev"

func main() {
	app := &cli.App{
		Name:  "diplomactl",
		Usage: "Issue, revoke and verify diplomas on the Fabric diploma registry",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "msp-id",
				Value:   "UniversityMSP",
				EnvVars: []string{"DIPLOMA_MSP_ID"},
			},
			&cli.StringFlag{
				Name:    "cert-path",
				EnvVars: []string{"DIPLOMA_CERT_PATH"},
			},
			&cli.StringFlag{
				Name:    "key-path",
				Usage:   "private key file or MSP keystore directory",
				EnvVars: []string{"DIPLOMA_KEY_PATH"},
			},
			&cli.StringFlag{
				Name:    "tls-cert-path",
				EnvVars: []string{"DIPLOMA_TLS_CERT_PATH"},
			},
			&cli.StringFlag{
				Name:    "peer-endpoint",
				Value:   "localhost:7051",
				EnvVars: []string{"DIPLOMA_PEER_ENDPOINT"},
			},
			&cli.StringFlag{
				Name:    "gateway-peer",
				Usage:   "TLS server name of the peer",
				EnvVars: []string{"DIPLOMA_GATEWAY_PEER"},
			},
			&cli.StringFlag{
				Name:    "channel",
				Value:   "diplomas",
				EnvVars: []string{"DIPLOMA_CHANNEL"},
			},
			&cli.StringFlag{
				Name:    "chaincode",
				Value:   "diplomacert",
				EnvVars: []string{"DIPLOMA_CHAINCODE"},
			},
			&cli.StringFlag{
				Name:    "store",
				Usage:   "artifact store: kubo, file or memory",
				Value:   "kubo",
				EnvVars: []string{"DIPLOMA_STORE"},
			},
			&cli.StringFlag{
				Name:    "kubo-api",
				Value:   "http://127.0.0.1:5001",
				EnvVars: []string{"DIPLOMA_KUBO_API"},
			},
			&cli.StringFlag{
				Name:    "store-dir",
				Value:   "artifacts",
				EnvVars: []string{"DIPLOMA_STORE_DIR"},
			},
			&cli.StringFlag{
				Name:    "gateway",
				Usage:   "public gateway used to build locators",
				Value:   "https://ipfs.io/ipfs",
				EnvVars: []string{"DIPLOMA_GATEWAY"},
			},
			&cli.StringFlag{
				Name:    "local-gateway",
				Usage:   "gateway tried first when resolving metadata",
				Value:   "http://localhost:8080/ipfs",
				EnvVars: []string{"DIPLOMA_LOCAL_GATEWAY"},
			},
			&cli.StringFlag{
				Name:    "issuer-name",
				Value:   "Diploma Registry",
				EnvVars: []string{"DIPLOMA_ISSUER_NAME"},
			},
			&cli.BoolFlag{
				Name:    "allow-degraded",
				Usage:   "issue with locally computed content ids when the store is down",
				EnvVars: []string{"DIPLOMA_ALLOW_DEGRADED"},
			},
		},
		Commands: []*cli.Command{
			whoami,
			admin,
			issue,
			revoke,
			verify,
			show,
			total,
			list,
			watch,
			serve,
			cidCmd,
		},
		ErrWriter: os.Stderr,
		Version:   Version,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
