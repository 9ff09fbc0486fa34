package kv

import (
	"context"
	"encoding/csv"
	"fmt"
	"github.com/caplayground/caplay/cmd/util"
	"github.com/caplayground/caplay/lib/native"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "perf",
		Short:   "Performance testing tool for the store",
		Long:    util.WrapString("Runs benchmarks against the store of the profile (or of a running shell with --remote). All keys written start with the __perf prefix. They are removed from the native storage of a local profile after each benchmark; the engine backend and a remote shell keep them."),
		RunE:    run,
		PreRunE: processPerfConfig,
	}
	perfKeyPrefix        = "__perf"
	perfLargeValueSizeKB = 100
	perfNumThreads       = 10
	perfKeySpread        = 100
	perfSkip             = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. set,get)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "large-value-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the value for the set-large test should be (in KB)"))
	key = "keys"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different keys to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processPerfConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	perfLargeValueSizeKB = viper.GetInt("large-value-size")
	perfKeySpread = max(viper.GetInt("keys"), 1)
	perfNumThreads = max(viper.GetInt("threads"), 1)
	perfSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func run(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for the caplay store")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	if viper.GetBool("remote") {
		fmt.Println(util.GetClientConfig().String())
	} else {
		fmt.Printf("Profile: %s\nEngine: %s\n", viper.GetString("profile"), viper.GetString("persist"))
	}
	fmt.Printf("Threads: %d\n", perfNumThreads)
	fmt.Println()

	fmt.Println("starting tests...")

	// Create results map
	results := make(map[string]testing.BenchmarkResult)

	setResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("set") {
			return
		}

		getKey, iter := getKeys("set")
		b.Cleanup(func() { cleanupKeys(iter) })

		b.SetParallelism(perfNumThreads)
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				if err := kvStore.Set(getKey(counter), map[string]int{"n": counter}); err != nil {
					log.Printf("(set) - error setting key: %v\n", err)
				}
				counter++
			}
		})
	})

	results["set"] = setResult
	printResult("set", setResult)

	setLargeValueResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("set-large") {
			return
		}

		// prepare large value
		largeValue := strings.Repeat("x", perfLargeValueSizeKB*1024)

		getKey, iter := getKeys("set-large")
		b.Cleanup(func() { cleanupKeys(iter) })

		b.SetParallelism(perfNumThreads)
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				if err := kvStore.Set(getKey(counter), largeValue); err != nil {
					log.Printf("(set-large) - error setting key: %v", err)
				}
				counter++
			}
		})
	})

	results["set-large"] = setLargeValueResult
	printResult("set-large", setLargeValueResult)

	getSyncResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("get-sync") {
			return
		}

		getKey, iter := getKeys("get")
		b.Cleanup(func() { cleanupKeys(iter) })
		iter(func(k string) {
			if err := kvStore.Set(k, "test"); err != nil {
				log.Printf("(get-sync) - error setting key: %v\n", err)
			}
		})

		b.SetParallelism(perfNumThreads)
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				kvStore.GetSync(getKey(counter))
				counter++
			}
		})
	})

	results["get-sync"] = getSyncResult
	printResult("get-sync", getSyncResult)

	getResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("get") {
			return
		}

		getKey, iter := getKeys("get")
		b.Cleanup(func() { cleanupKeys(iter) })
		iter(func(k string) {
			if err := kvStore.Set(k, "test"); err != nil {
				log.Printf("(get) - error setting key: %v\n", err)
			}
		})

		b.SetParallelism(perfNumThreads)
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				if _, _, err := kvStore.Get(context.Background(), getKey(counter)); err != nil {
					log.Printf("(get) - error getting key: %v\n", err)
				}
				counter++
			}
		})
	})

	results["get"] = getResult
	printResult("get", getResult)

	mixedUsageResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("mixed") {
			return
		}

		getKey, iter := getKeys("mixed")
		b.Cleanup(func() { cleanupKeys(iter) })

		b.SetParallelism(perfNumThreads)
		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				key := getKey(counter)
				var err error
				switch counter % 3 {
				case 0: // set
					err = kvStore.Set(key, counter)
				case 1: // cached get
					kvStore.GetSync(key)
				case 2: // authoritative get
					_, _, err = kvStore.Get(context.Background(), key)
				}

				if err != nil {
					log.Printf("(mixed) - error performing operation (%d): %v\n", counter%3, err)
				}
				counter++
			}
		})
	})

	results["mixed"] = mixedUsageResult
	printResult("mixed", mixedUsageResult)

	// Write results to csv is specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results); err != nil {
			return fmt.Errorf("failed to export results to CSV: %v", err)
		}
		fmt.Println("Export complete")
	}

	return nil
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

func shouldSkip(test string) bool {
	for _, skip := range perfSkip {
		if test == strings.TrimSpace(skip) {
			return true
		}
	}
	return false
}

// cleanupKeys removes the benchmark keys from the native storage of the local context
func cleanupKeys(iter func(func(string))) {
	if kvRuntime == nil {
		return
	}
	if n, err := removeKeys(kvRuntime.Native, iter); err != nil {
		log.Printf("(cleanup) - removed %d keys, then: %v\n", n, err)
	}
}

// removeKeys removes every key of iter from ls and stops at the first error
func removeKeys(ls native.Storage, iter func(func(string))) (int, error) {
	var (
		removed int
		err     error
	)
	iter(func(k string) {
		if err != nil {
			return
		}
		if err = ls.RemoveItem(k); err == nil {
			removed++
		}
	})
	return removed, err
}

// creates an array of test keys and functions to work with them
func getKeys(prefix string) (func(int) string, func(func(string))) {
	keys := make([]string, perfKeySpread)
	for i := 0; i < perfKeySpread; i++ {
		keys[i] = fmt.Sprintf("%s-%s-%d", perfKeyPrefix, prefix, i)
	}

	// Function to get a key by index (with wraparound)
	getKey := func(i int) string {
		return keys[i%perfKeySpread]
	}

	// Function to iterate over all keys and apply a function to each
	iterateKeys := func(fn func(string)) {
		for _, key := range keys {
			fn(key)
		}
	}

	return getKey, iterateKeys
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "Skipped",
		"Remote", "Engine", "Serializer",
		"Threads", "LargeValueSizeKB", "Keys Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	for test, result := range results {
		var nsPerOp, opsPerSec float64
		skipped := "true"

		if result.NsPerOp() != 0 {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			skipped,
			strconv.FormatBool(viper.GetBool("remote")),
			viper.GetString("persist"),
			viper.GetString("serializer"),
			strconv.Itoa(perfNumThreads),
			strconv.Itoa(perfLargeValueSizeKB),
			strconv.Itoa(perfKeySpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
