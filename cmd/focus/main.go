// Command focus is FOCUS's single CLI binary: subcommands dispatched by
// os.Args[1], each a thin wrapper over a library package, collapsed into
// one binary because FOCUS's CLI table describes one coherent tool
// rather than several independent ones.
package main

import (
	"fmt"
	"os"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "simpletx":
		err = runSimpleTx(os.Args[2:])
	case "simplerx":
		err = runSimpleRx(os.Args[2:])
	case "receiver":
		err = runReceiver(os.Args[2:])
	case "videotx":
		err = runVideoTx(os.Args[2:])
	case "videorx":
		err = runVideoRx(os.Args[2:])
	case "multirate":
		err = runMultirate(os.Args[2:])
	case "benchmark":
		err = runBenchmark(os.Args[2:])
	case "test":
		err = runSelfTest(os.Args[2:])
	case "fft_init":
		err = runFFTInit(os.Args[2:])
	case "-h", "-help", "--help", "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "focus: unknown command %q\n", os.Args[1])
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintln(os.Stderr, "focus: "+err.Error())
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprint(os.Stderr, `usage: focus <command> [flags]

commands:
  simpletx      encode a stdin payload into a single code image
  simplerx      decode a single code image to stdout
  receiver      run as an external pipe worker (see multiproc)
  videotx       encode a byte stream into a sequence of video frames
  videorx       decode a captured video back into a byte stream
  multirate     transmit with independent per-subchannel cadences
  benchmark     measure fft, receiver or multiprocreceiver throughput
  test          run FOCUS's built-in self-test suite
  fft_init      pre-warm FFT plans for the shapes this host will use

Run "focus <command> -h" for a command's flags.
`)
}
