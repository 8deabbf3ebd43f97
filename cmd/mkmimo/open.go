package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sashaperigo/mkmimo/pkg/manifest"
)

// endpointSet names and opens every input and output descriptor mkmimo will
// wire into the loop.
type endpointSet struct {
	inputNames  []string
	inputFiles  []*os.File
	outputNames []string
	outputFiles []*os.File
}

// resolveEndpoints builds the set either from a --manifest file or from
// positional arguments split by "--" into inputs and outputs.
func resolveEndpoints(cmd *cobra.Command, args []string) (*endpointSet, error) {
	manifestPath, _ := cmd.Flags().GetString("manifest")
	if manifestPath != "" {
		return resolveFromManifest(manifestPath)
	}
	return resolveFromArgs(cmd, args)
}

func resolveFromManifest(path string) (*endpointSet, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	inNames, inPaths := m.Inputs()
	outNames, outPaths := m.Outputs()
	if len(inNames)+len(outNames) == 0 {
		return nil, ErrNoEndpoints
	}
	return openNamedPaths(inNames, inPaths, outNames, outPaths)
}

func resolveFromArgs(cmd *cobra.Command, args []string) (*endpointSet, error) {
	dash := cmd.ArgsLenAtDash()
	if len(args) == 0 {
		return nil, ErrNoEndpoints
	}
	if dash < 0 {
		return nil, ErrMissingSeparator
	}

	inPaths := args[:dash]
	outPaths := args[dash:]
	if len(inPaths)+len(outPaths) == 0 {
		return nil, ErrNoEndpoints
	}

	inNames := namesFromPaths("in", inPaths)
	outNames := namesFromPaths("out", outPaths)
	return openNamedPaths(inNames, inPaths, outNames, outPaths)
}

func namesFromPaths(prefix string, paths []string) []string {
	names := make([]string, len(paths))
	for i, p := range paths {
		if p == "-" {
			names[i] = fmt.Sprintf("%s[%d]:-", prefix, i)
			continue
		}
		names[i] = p
	}
	return names
}

func openNamedPaths(inNames, inPaths, outNames, outPaths []string) (*endpointSet, error) {
	set := &endpointSet{inputNames: inNames, outputNames: outNames}

	for i, p := range inPaths {
		f, err := openInput(p)
		if err != nil {
			set.closeAll()
			return nil, fmt.Errorf("open input %q: %w", inNames[i], err)
		}
		set.inputFiles = append(set.inputFiles, f)
	}

	for i, p := range outPaths {
		f, err := openOutput(p)
		if err != nil {
			set.closeAll()
			return nil, fmt.Errorf("open output %q: %w", outNames[i], err)
		}
		set.outputFiles = append(set.outputFiles, f)
	}

	return set, nil
}

func openInput(path string) (*os.File, error) {
	if path == "-" {
		return os.Stdin, nil
	}
	return os.Open(path)
}

func openOutput(path string) (*os.File, error) {
	if path == "-" {
		return os.Stdout, nil
	}
	return os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0o644)
}

// closeAll closes every descriptor opened so far, used to unwind after a
// mid-sequence open failure. Stdin/stdout are left open.
func (s *endpointSet) closeAll() {
	for _, f := range s.inputFiles {
		if f != os.Stdin {
			_ = f.Close()
		}
	}
	for _, f := range s.outputFiles {
		if f != os.Stdout {
			_ = f.Close()
		}
	}
}
