// Command trustcore is the CLI glue for the cipher, table, and transport
// packages: serve/client/table subcommands, modeled on the teacher's
// main.go signal-handling and flag layout.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/rpcpool/trustcore/internal/ancillary"
	"github.com/rpcpool/trustcore/internal/config"
	"github.com/rpcpool/trustcore/internal/netsrv"
	"github.com/rpcpool/trustcore/internal/packet"
	"github.com/rpcpool/trustcore/internal/table"
	"github.com/schollz/progressbar/v3"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/urfave/cli/v2"
)

// recordSize is the fixed on-disk width of the CLI's demo table rows.
const recordSize = 8 + cliPayloadSize

// defaultMaxRecords bounds the demo table; the table subcommands have no
// option to change it.
const defaultMaxRecords = 1 << 24

var log = ancillary.NewLogger("cmd")

func main() {
	app := &cli.App{
		Name:  "trustcore",
		Usage: "cipher, table, and transport toolkit CLI",
		Commands: []*cli.Command{
			serveCommand(),
			clientCommand(),
			tableCommand(),
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Error(err, "run")
		os.Exit(1)
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "run the server interface",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Required: true, Usage: "path to a YAML server config"},
		},
		Action: func(cctx *cli.Context) error {
			watcher, err := config.WatchFile(cctx.String("config"))
			if err != nil {
				return err
			}
			defer watcher.Close()
			cfg := watcher.Current()

			srv, err := netsrv.NewServer("serve", cfg.ListenAddr, cfg.BcryptCost)
			if err != nil {
				return err
			}
			log.Info("listen", "addr", srv.Addr().String())

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			go reportResourceUsage(ctx)
			go func() { _ = srv.Run() }()

			for {
				select {
				case <-ctx.Done():
					log.Info("shutdown")
					return srv.Stop()
				case newCfg := <-watcher.Updates:
					log.Info("config_reload", "listen_addr", newCfg.ListenAddr, "bcrypt_cost", newCfg.BcryptCost)
				}
			}
		},
	}
}

// reportResourceUsage samples this process's RSS once via gopsutil and logs
// it humanized; it does not repeat the sample.
func reportResourceUsage(ctx context.Context) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		log.Error(err, "resource_sampler_init")
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		if mem, err := proc.MemoryInfo(); err == nil {
			log.Info("resource_sample", "rss", humanize.Bytes(mem.RSS))
		}
		return // one-shot sample at startup; a real deployment would tick this on a timer.
	}
}

func clientCommand() *cli.Command {
	return &cli.Command{
		Name:  "client",
		Usage: "connect to a server and send one message",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Required: true},
			&cli.StringFlag{Name: "message", Value: "ping"},
		},
		Action: func(cctx *cli.Context) error {
			cl, err := netsrv.Dial("client", cctx.String("addr"))
			if err != nil {
				return err
			}
			defer cl.Stop()

			cl.Connection().Send(packet.New(1, 0, 0, 0, []byte(cctx.String("message"))))
			msgs := cl.Queue().Update(1, true)
			if len(msgs) == 0 {
				return fmt.Errorf("client: no reply received")
			}
			fmt.Println(string(msgs[0].Msg.Body))
			return nil
		},
	}
}

func tableCommand() *cli.Command {
	return &cli.Command{
		Name:  "table",
		Usage: "inspect and modify a record table",
		Subcommands: []*cli.Command{
			{
				Name:  "load",
				Usage: "load a table and report its row and byte count",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Required: true},
					&cli.StringSliceFlag{Name: "mirror", Usage: "mirror file path (repeatable)"},
				},
				Action: func(cctx *cli.Context) error {
					storage, err := table.OpenRecordFile(cctx.String("path"), cctx.StringSlice("mirror"), recordSize, defaultMaxRecords)
					if err != nil {
						return err
					}
					defer storage.Close()

					tbl := table.New("cli", storage, table.NewLinearIndex(), newCLIRow)

					bar := progressbar.Default(storage.Count(), "loading table")
					defer bar.Close()
					if err := tbl.Load(); err != nil {
						return err
					}
					_ = bar.Add64(storage.Count())

					fmt.Printf("rows=%d records=%d size=%s\n",
						tbl.Len(), tbl.RecordCount(),
						humanize.Bytes(uint64(tbl.RecordCount())*uint64(recordSize)))
					return nil
				},
			},
			{
				Name:  "insert",
				Usage: "insert one row with the given payload text",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "path", Required: true},
					&cli.StringSliceFlag{Name: "mirror", Usage: "mirror file path (repeatable)"},
					&cli.StringFlag{Name: "payload", Required: true},
				},
				Action: func(cctx *cli.Context) error {
					storage, err := table.OpenRecordFile(cctx.String("path"), cctx.StringSlice("mirror"), recordSize, defaultMaxRecords)
					if err != nil {
						return err
					}
					defer storage.Close()

					tbl := table.New("cli", storage, table.NewLinearIndex(), newCLIRow)
					if err := tbl.Load(); err != nil {
						return err
					}

					row := newCLIRow()
					row.SetPK(table.NewRowIDFromClock(ancillary.NewClock()))
					copy(row.payload[:], cctx.String("payload"))
					if err := tbl.Insert(row); err != nil {
						return err
					}

					log.Info("table_insert", "path", cctx.String("path"), "key", row.PK().String())
					fmt.Printf("inserted key=%s rows=%d\n", row.PK(), tbl.Len())
					return nil
				},
			},
		},
	}
}
