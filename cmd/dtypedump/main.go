// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	"github.com/saferwall/dtype"
	"github.com/saferwall/dtype/internal/fileio"
	dtypelog "github.com/saferwall/dtype/internal/log"
	"github.com/spf13/cobra"
)

var (
	useLatest bool
	indent    int
	verbose   bool

	// warnLogger wraps the ambient dtypelog.Helper the decoder reports
	// non-fatal warnings (e.g. a non-identity V1 array permutation, §9)
	// through, mirroring the teacher's own opts.Logger wiring in file.go.
	// --verbose lowers the filter to LevelWarn; otherwise it stays at the
	// teacher's own default of errors-only.
	warnLogger dtypelog.Logger
)

func newDecodeOptions(h dtype.FileHandle) dtype.DecodeOptions {
	return dtype.DecodeOptions{File: h, Logger: warnLogger}
}

func isDirectory(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

func dumpOne(filename string) {
	log.Printf("Processing filename %s", filename)

	data, err := ioutil.ReadFile(filename)
	if err != nil {
		log.Printf("Error while opening file: %s, reason: %s", filename, err)
		return
	}

	opts := newDecodeOptions(staticFileHandle{useLatest: useLatest})
	t, n, err := dtype.Decode(data, opts)
	if err != nil {
		log.Printf("Error while decoding %s: %s", filename, err)
		return
	}

	fmt.Printf("%d bytes consumed\n", n)
	dtype.Dump(os.Stdout, t, indent)
}

// staticFileHandle lets the CLI pass --latest without opening a real
// mapped file (dumping a raw message payload has no containing file).
type staticFileHandle struct{ useLatest bool }

func (h staticFileHandle) UseLatestFormat() bool { return h.useLatest }

func dump(cmd *cobra.Command, args []string) {
	filePath := args[0]

	if !isDirectory(filePath) {
		dumpOne(filePath)
		return
	}

	var fileList []string
	filepath.Walk(filePath, func(path string, f os.FileInfo, err error) error {
		if !isDirectory(path) {
			fileList = append(fileList, path)
		}
		return nil
	})
	for _, file := range fileList {
		dumpOne(file)
	}
}

func openDirect(filename string) {
	h, err := fileio.Open(filename, useLatest)
	if err != nil {
		log.Printf("Error while mapping file: %s, reason: %s", filename, err)
		return
	}
	defer h.Close()

	t, n, err := dtype.Decode(h.Bytes(), newDecodeOptions(h))
	if err != nil {
		log.Printf("Error while decoding %s: %s", filename, err)
		return
	}
	fmt.Printf("%d bytes consumed\n", n)
	dtype.Dump(os.Stdout, t, indent)
}

func main() {
	var rootCmd = &cobra.Command{
		Use:   "dtypedump",
		Short: "A datatype message codec dumper",
		Long:  "Decodes and pretty-prints object-header datatype messages",
	}

	var versionCmd = &cobra.Command{
		Use:   "version",
		Short: "Print version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("You are using version 0.1.0")
		},
	}

	var dumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Decode and dump a datatype message payload",
		Args:  cobra.MinimumNArgs(1),
		Run:   dump,
	}

	var mmapCmd = &cobra.Command{
		Use:   "mmap",
		Short: "Decode a datatype message via a memory-mapped file handle",
		Args:  cobra.ExactArgs(1),
		Run: func(cmd *cobra.Command, args []string) {
			openDirect(args[0])
		},
	}

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(mmapCmd)

	rootCmd.PersistentFlags().BoolVarP(&useLatest, "latest", "l", false, "assume use-latest-format on decode")
	rootCmd.PersistentFlags().IntVarP(&indent, "indent", "i", 0, "base indent for the dump")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show non-fatal decode warnings")

	cobra.OnInitialize(func() {
		level := dtypelog.LevelError
		if verbose {
			level = dtypelog.LevelWarn
		}
		warnLogger = dtypelog.NewFilter(dtypelog.NewStdLogger(os.Stderr), dtypelog.FilterLevel(level))
	})

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
