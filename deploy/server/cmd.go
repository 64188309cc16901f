package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/forest33/sockserver/business/entity"
	"github.com/forest33/sockserver/pkg/structs"
)

const (
	commandInit = "init"
	commandHelp = "help"
)

type commandData struct {
	host     string
	engine   string
	overflow string
}

// parseCommandLine runs the maintenance commands and returns false, or
// returns the listening port from the first argument
func parseCommandLine() (uint16, bool) {
	if len(os.Args) < 2 {
		printHelp()
		zlog.Fatal(entity.ErrPortNotSpecified)
	}

	switch os.Args[1] {
	case commandHelp:
		printHelp()
		return 0, false
	case commandInit:
		data := &commandData{}
		fs := flag.NewFlagSet(commandInit, flag.ExitOnError)
		fs.StringVar(&data.host, "host", cfg.Network.Host, "listening address, all interfaces if empty")
		fs.StringVar(&data.engine, "engine", cfg.Network.Engine, "network engine (v1, v2)")
		fs.StringVar(&data.overflow, "overflow", cfg.Accumulator.Overflow, "sum overflow mode (wrap, saturate)")
		if err := fs.Parse(os.Args[2:]); err != nil {
			zlog.Fatal(err)
		}
		handlerInit(data)
		return 0, false
	}

	port, err := parsePort(os.Args[1])
	if err != nil {
		printHelp()
		zlog.Fatal(err)
	}

	return port, true
}

func parsePort(arg string) (uint16, error) {
	if arg == "" {
		return 0, entity.ErrPortNotSpecified
	}
	port, err := strconv.ParseUint(arg, 10, 16)
	if err != nil || port == 0 {
		return 0, errors.Wrap(entity.ErrWrongPort, arg)
	}
	return uint16(port), nil
}

func handlerInit(data *commandData) {
	cfg.Network.Host = data.host
	cfg.Network.Engine = structs.If(data.engine != "", data.engine, entity.EngineNameV1)
	cfg.Accumulator.Overflow = structs.If(data.overflow != "", data.overflow, entity.OverflowNameWrap)

	if err := cfg.Validate(); err != nil {
		zlog.Fatalf("invalid configuration: %v", err)
	}

	cfgHandler.Update(cfg)
	if err := cfgHandler.Save(); err != nil {
		zlog.Fatalf("failed to save configuration: %v", err)
	}

	zlog.Info().Str("path", cfgHandler.GetPath()).Msg("initialization successfully complete")
}

func printHelp() {
	fmt.Printf("Usage: ./server port | command args\n")
	fmt.Printf(" port	- start listening on the TCP port\n")
	fmt.Printf(" init	- write the configuration file\n")
	fmt.Printf(" help	- show this help\n")
	fmt.Printf("Get help for a specific command: ./server command -h\n")
}
