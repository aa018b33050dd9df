package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: justel <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run        Run pipeline stages")
	fmt.Fprintln(w, "  stages     List the stages of a pipeline")
	fmt.Fprintln(w, "  filter     Keep JSON records with a non-empty document hierarchy")
	fmt.Fprintln(w, "  doctor     Check the pipeline and the PDF preview environment")
	fmt.Fprintln(w, "  version    Show version information")
	fmt.Fprintln(w, "  help       Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'justel help <command>' for details on a specific command.")
}

// printRunUsage prints usage for the run command.
func printRunUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: justel run <stage>... [flags]")
	fmt.Fprintln(w, "       justel run --all [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run stages in the order given, or every stage in pipeline order.")
	fmt.Fprintln(w, "A file that fails is reported and skipped; a stage whose input")
	fmt.Fprintln(w, "directory is missing stops the run.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Pipeline:")
	fmt.Fprintln(w, "  -c, --config <name>       Pipeline name or path (default: built-in justel)")
	fmt.Fprintln(w, "  -a, --all                 Run every stage")
	fmt.Fprintln(w, "      --base-dir <dir>      Root for relative stage paths")
	fmt.Fprintln(w, "      --log-dir <dir>       Root for relative audit log paths")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom styles/ and pipelines/ directory")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Preview:")
	fmt.Fprintln(w, "  -t, --timeout <d>         Page load timeout for PDF stages (e.g., 30s, 2m)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output Control:")
	fmt.Fprintln(w, "      --metrics-file <path> Write Prometheus metrics textfile after the run")
	fmt.Fprintln(w, "      --json-logs           Log JSON lines instead of console text")
	fmt.Fprintln(w, "      --strict              Exit 1 when any file failed")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show debug logs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  JUSTEL_CONFIG, JUSTEL_BASE_DIR, JUSTEL_LOG_DIR, JUSTEL_METRICS_FILE")
	fmt.Fprintln(w, "  Flags win over environment variables, which win over the pipeline file.")
}

// printStagesUsage prints usage for the stages command.
func printStagesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: justel stages [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "List stages with their resolved input and output directories.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -c, --config <name>       Pipeline name or path")
	fmt.Fprintln(w, "      --base-dir <dir>      Root for relative stage paths")
	fmt.Fprintln(w, "      --log-dir <dir>       Root for relative audit log paths")
	fmt.Fprintln(w, "  -v, --verbose             Also show audit logs and extensions")
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: justel doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check the pipeline, its stage directories and styles, Chrome and the")
	fmt.Fprintln(w, "sandbox settings. Exits 1 when the pipeline cannot run.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "      --json                Print the report as JSON")
	fmt.Fprintln(w, "  -c, --config <name>       Pipeline name or path")
	fmt.Fprintln(w, "      --base-dir <dir>      Root for relative stage paths")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom asset directory")
}

// printFilterUsage prints usage for the filter command.
func printFilterUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: justel filter <source> <destination> [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Copy every JSON record whose document_hierarchy is a non-empty array.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  -n, --samples <n>         Sample names shown per category (default: 5)")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) int {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return ExitSuccess
	}

	switch args[0] {
	case "run":
		printRunUsage(env.Stdout)
	case "stages":
		printStagesUsage(env.Stdout)
	case "filter":
		printFilterUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: justel version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: justel help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
		return ExitUsage
	}
	return ExitSuccess
}
