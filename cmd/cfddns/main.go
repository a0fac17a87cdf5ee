package main

import (
	"fmt"
	"os"
	"runtime"
	"syscall"

	svc "github.com/judwhite/go-svc"
	"github.com/urfave/cli/v2"

	"github.com/jxo-me/cfddns/config"
)

var (
	Version   = "DEV"
	BuildTime = "unknown"
)

func main() {
	app := &cli.App{
		Name:    "cfddns",
		Usage:   "keep Cloudflare address records pointed at this machine",
		Version: fmt.Sprintf("%s (built %s, %s %s/%s)", Version, BuildTime, runtime.Version(), runtime.GOOS, runtime.GOARCH),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"C"},
				Usage:   "configuration file",
				Value:   config.GetConfigFilePath(),
			},
			&cli.StringFlag{
				Name:    "output-format",
				Aliases: []string{"O"},
				Usage:   "print the parsed configuration as yaml or json and exit",
			},
		},
		Action: runAction,
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "run the update daemon in the foreground",
				Action: runAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	prg := &program{
		cfgFile:      c.String("config"),
		outputFormat: c.String("output-format"),
	}
	return svc.Run(prg, syscall.SIGINT, syscall.SIGTERM)
}
