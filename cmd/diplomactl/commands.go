package main

import (
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/HamzaTakiX/Blockchain-project/api"
	"github.com/HamzaTakiX/Blockchain-project/artifact"
	"github.com/HamzaTakiX/Blockchain-project/model"
	"github.com/HamzaTakiX/Blockchain-project/session"

	"github.com/urfave/cli/v2"
)

// withSession runs fn with an open session and closes the connection afterwards.
func withSession(fn func(cmd *cli.Context, sess *session.Session) error) cli.ActionFunc {
	return func(cmd *cli.Context) error {
		sess, conn, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer conn.Close()
		return fn(cmd, sess)
	}
}

func addressArg(cmd *cli.Context) (string, error) {
	if cmd.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one address argument")
	}
	return model.NormalizeAddress(cmd.Args().First())
}

var whoami = &cli.Command{
	Name:  "whoami",
	Usage: "Print the registry address of the configured identity",
	Action: withSession(func(cmd *cli.Context, sess *session.Session) error {
		me, err := sess.WhoAmI(cmd.Context)
		if err != nil {
			return err
		}
		isAdmin, err := sess.IsAdmin(cmd.Context, me)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{"address": me, "short": model.ShortAddress(me), "isAdmin": isAdmin})
	}),
}

var admin = &cli.Command{
	Name:  "admin",
	Usage: "Print the registry admin address",
	Action: withSession(func(cmd *cli.Context, sess *session.Session) error {
		addr, err := sess.Admin(cmd.Context)
		if err != nil {
			return err
		}
		return printJSON(map[string]string{"adminAddress": addr})
	}),
}

var issue = &cli.Command{
	Name:      "issue",
	Usage:     "Upload a certificate and record a diploma",
	ArgsUsage: "<student-address>",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "name", Required: true, Usage: "student name"},
		&cli.StringFlag{Name: "specialization", Required: true},
		&cli.StringFlag{Name: "file", Required: true, Usage: "certificate file"},
		&cli.StringFlag{Name: "file-type", Usage: "MIME type, guessed from the extension when empty"},
	},
	Action: withSession(func(cmd *cli.Context, sess *session.Session) error {
		addr, err := addressArg(cmd)
		if err != nil {
			return err
		}
		path := cmd.String("file")
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading certificate: %w", err)
		}
		fileType := cmd.String("file-type")
		if fileType == "" {
			fileType = mime.TypeByExtension(filepath.Ext(path))
		}
		if fileType == "" {
			fileType = http.DetectContentType(data)
		}

		res, err := sess.Issue(cmd.Context, session.IssueRequest{
			StudentAddress: addr,
			StudentName:    cmd.String("name"),
			Specialization: cmd.String("specialization"),
			FileName:       filepath.Base(path),
			FileType:       fileType,
			File:           data,
		})
		if err != nil {
			return err
		}
		if res.Degraded {
			for _, cause := range res.DegradedCauses {
				fmt.Fprintf(os.Stderr, "warning: artifact not stored: %v\n", cause)
			}
		}
		return printJSON(res)
	}),
}

var revoke = &cli.Command{
	Name:      "revoke",
	Usage:     "Revoke a diploma",
	ArgsUsage: "<student-address>",
	Action: withSession(func(cmd *cli.Context, sess *session.Session) error {
		addr, err := addressArg(cmd)
		if err != nil {
			return err
		}
		if err := sess.Revoke(cmd.Context, addr); err != nil {
			return err
		}
		return printJSON(map[string]any{"address": addr, "revoked": true})
	}),
}

var verify = &cli.Command{
	Name:      "verify",
	Usage:     "Report whether an address was ever issued a diploma, and whether it is still valid",
	ArgsUsage: "<student-address>",
	Action: withSession(func(cmd *cli.Context, sess *session.Session) error {
		addr, err := addressArg(cmd)
		if err != nil {
			return err
		}
		registered, err := sess.Verify(cmd.Context, addr)
		if err != nil {
			return err
		}
		valid := false
		if registered {
			record, err := sess.GetDiploma(cmd.Context, addr)
			if err != nil {
				return err
			}
			valid = record.IsValid
		}
		return printJSON(map[string]any{"address": addr, "registered": registered, "valid": valid})
	}),
}

var show = &cli.Command{
	Name:      "show",
	Usage:     "Show a diploma record and its metadata",
	ArgsUsage: "<student-address>",
	Action: withSession(func(cmd *cli.Context, sess *session.Session) error {
		addr, err := addressArg(cmd)
		if err != nil {
			return err
		}
		view, err := sess.GetDiplomaWithMetadata(cmd.Context, addr)
		if err != nil {
			return err
		}
		return printJSON(view)
	}),
}

var total = &cli.Command{
	Name:  "total",
	Usage: "Print the number of diplomas ever issued",
	Action: withSession(func(cmd *cli.Context, sess *session.Session) error {
		n, err := sess.TotalIssued(cmd.Context)
		if err != nil {
			return err
		}
		return printJSON(map[string]int{"totalIssued": n})
	}),
}

var list = &cli.Command{
	Name:  "list",
	Usage: "List every address holding a diploma",
	Action: withSession(func(cmd *cli.Context, sess *session.Session) error {
		addrs, err := sess.StudentAddresses(cmd.Context)
		if err != nil {
			return err
		}
		return printJSON(addrs)
	}),
}

var watch = &cli.Command{
	Name:  "watch",
	Usage: "Stream issuance and revocation events",
	Action: func(cmd *cli.Context) error {
		ctx, stop := signal.NotifyContext(cmd.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		sess, conn, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer conn.Close()

		events, err := conn.Events(ctx)
		if err != nil {
			return err
		}
		for n := range sess.Watch(ctx, events) {
			if err := printJSON(n); err != nil {
				return err
			}
		}
		return nil
	},
}

var serve = &cli.Command{
	Name:  "serve",
	Usage: "Run the read-only verification API",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "addr",
			Value:   ":8090",
			EnvVars: []string{"DIPLOMA_API_ADDR"},
		},
	},
	Action: func(cmd *cli.Context) error {
		ctx, stop := signal.NotifyContext(cmd.Context, os.Interrupt, syscall.SIGTERM)
		defer stop()

		sess, conn, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer conn.Close()

		s, err := api.New(api.Args{Addr: cmd.String("addr"), Version: Version, Registry: sess})
		if err != nil {
			return err
		}
		return s.Serve(ctx)
	},
}

var cidCmd = &cli.Command{
	Name:      "cid",
	Usage:     "Compute the content id and locator of a file without uploading it",
	ArgsUsage: "<file>",
	Action: func(cmd *cli.Context) error {
		if cmd.NArg() != 1 {
			return errors.New("expected exactly one file argument")
		}
		data, err := os.ReadFile(cmd.Args().First())
		if err != nil {
			return err
		}
		id, err := artifact.ComputeID(data)
		if err != nil {
			return err
		}
		return printJSON(map[string]any{
			"contentId": id,
			"locator":   artifact.NewGateway(cmd.String("gateway")).Resolve(id),
			"size":      len(data),
		})
	},
}
