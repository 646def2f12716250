// skylut precomputes atmospheric scattering lookup tables for real-time sky
// rendering and writes them out as packed half-float textures with previews.
package main

import (
	"flag"

	"github.com/golang/glog"
	"github.com/spf13/cobra"
)

var cmdRoot = &cobra.Command{
	Use:          "skylut",
	SilenceUsage: true,
}

func main() {
	// glog registers its flags on the standard FlagSet.  Expose them on the
	// cobra command line and mark the standard FlagSet parsed so glog does
	// not complain.
	cmdRoot.PersistentFlags().AddGoFlagSet(flag.CommandLine)
	flag.CommandLine.Parse(nil)

	glog.CopyStandardLogTo("INFO")
	defer glog.Flush()

	cmdRoot.AddCommand(cmdBuild, cmdInspect)

	if err := cmdRoot.Execute(); err != nil {
		glog.Flush()
		glog.Exitf("Error: %v", err)
	}
}
