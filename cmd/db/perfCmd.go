package db

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/ByAlphas/BigBaseAlpha-sub000/cmd/util"
	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/document"
	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/query"
	"github.com/ByAlphas/BigBaseAlpha-sub000/lib/store"
	gometrics "github.com/rcrowley/go-metrics"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	perfTestCmd = &cobra.Command{
		Use:     "bench",
		Short:   "Performance testing tool for the embedded store",
		Long:    "",
		RunE:    runBench,
		PreRunE: processBenchConfig,
	}
	benchCollection  = "__bench"
	benchLargeDocsKB = 100
	benchNumThreads  = 10
	benchDocSpread   = 100
	benchSkip        = make([]string, 0)
)

func init() {
	// add flags
	key := "skip"
	perfTestCmd.Flags().String(key, "", util.WrapString("Benchmarks to skip (comma separated - e.g. insert,query)"))
	key = "threads"
	perfTestCmd.Flags().Int(key, 10, util.WrapString("Number of threads to use for the benchmark"))
	key = "large-doc-size"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How large the payload for the insert-large test should be (in KB)"))
	key = "docs"
	perfTestCmd.Flags().Int(key, 100, util.WrapString("How many different documents to use for the tests"))
	key = "csv"
	perfTestCmd.Flags().String(key, "", util.WrapString("Optional path to save benchmark results as CSV"))
}

func processBenchConfig(cmd *cobra.Command, _ []string) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	// Read the configuration from the command line flags and environment variables
	benchLargeDocsKB = viper.GetInt("large-doc-size")
	benchDocSpread = viper.GetInt("docs")
	benchNumThreads = viper.GetInt("threads")
	benchSkip = strings.Split(viper.GetString("skip"), ",")

	return nil
}

func runBench(_ *cobra.Command, _ []string) error {

	fmt.Println("Performance testing tool for the embedded document store")

	// Print configuration
	fmt.Println()
	fmt.Println("Configuration:")
	fmt.Printf("Backend: %s\n", viper.GetString("backend"))
	fmt.Printf("Threads: %d\n", benchNumThreads)
	fmt.Printf("Documents: %d\n", benchDocSpread)
	fmt.Println()

	// The benchmarks run against their own collection
	if err := st.CreateCollection(benchCollection, nil); err != nil && !errors.Is(err, store.ErrCollectionExists) {
		return err
	}

	fmt.Println("starting tests...")

	// Latency percentiles are tracked per test in a dedicated registry
	registry := gometrics.NewRegistry()

	// Create results map
	results := make(map[string]testing.BenchmarkResult)

	insertResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("insert") {
			return
		}

		// prepare ids
		getID, iter := benchIDs("insert")
		timer := gometrics.GetOrRegisterTimer("insert", registry)

		// cleanup
		b.Cleanup(func() {
			iter(func(_ int, id string) {
				if _, err := st.Delete(benchCollection, id); err != nil {
					log.Printf("(insert) - error deleting document: %v\n", err)
				}
			})
		})

		b.SetParallelism(benchNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				start := time.Now()
				_, err := st.Insert(benchCollection, document.Document{"id": getID(counter), "name": "bench", "seq": counter})
				timer.UpdateSince(start)
				if err != nil {
					log.Printf("(insert) - error inserting document: %v\n", err)
				}
				counter++
			}
		})
	})

	results["insert"] = insertResult
	printResult("insert", insertResult, registry)

	insertLargeResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("insert-large") {
			return
		}

		// prepare a large payload
		payload := strings.Repeat("x", benchLargeDocsKB*1024)

		// prepare ids
		getID, iter := benchIDs("insert-large")
		timer := gometrics.GetOrRegisterTimer("insert-large", registry)

		// cleanup
		b.Cleanup(func() {
			iter(func(_ int, id string) {
				if _, err := st.Delete(benchCollection, id); err != nil {
					log.Printf("(insert-large) - error deleting document: %v\n", err)
				}
			})
		})

		b.SetParallelism(benchNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				start := time.Now()
				_, err := st.Insert(benchCollection, document.Document{"id": getID(counter), "payload": payload})
				timer.UpdateSince(start)
				if err != nil {
					log.Printf("(insert-large) - error inserting document: %v\n", err)
				}
				counter++
			}
		})
	})

	results["insert-large"] = insertLargeResult
	printResult("insert-large", insertLargeResult, registry)

	getResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("get") {
			return
		}

		// prepare and insert documents
		getID, iter := benchIDs("get")
		seedDocuments(iter, "get")
		timer := gometrics.GetOrRegisterTimer("get", registry)

		// cleanup
		b.Cleanup(func() {
			iter(func(_ int, id string) {
				if _, err := st.Delete(benchCollection, id); err != nil {
					log.Printf("(get) - error deleting document: %v\n", err)
				}
			})
		})

		b.SetParallelism(benchNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				start := time.Now()
				_, _, err := st.FindByID(benchCollection, getID(counter))
				timer.UpdateSince(start)
				if err != nil {
					log.Printf("(get) - error getting document: %v\n", err)
				}
				counter++
			}
		})
	})

	results["get"] = getResult
	printResult("get", getResult, registry)

	getMissResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("get-miss") {
			return
		}

		timer := gometrics.GetOrRegisterTimer("get-miss", registry)

		b.SetParallelism(benchNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				id := fmt.Sprintf("bench-miss-%d", counter%benchDocSpread)
				start := time.Now()
				_, _, err := st.FindByID(benchCollection, id) // miss expected
				timer.UpdateSince(start)
				if err != nil {
					log.Printf("(get-miss) - error getting document: %v\n", err)
				}
				counter++
			}
		})
	})

	results["get-miss"] = getMissResult
	printResult("get-miss", getMissResult, registry)

	queryResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("query") {
			return
		}

		// prepare and insert documents
		_, iter := benchIDs("query")
		seedDocuments(iter, "query")
		timer := gometrics.GetOrRegisterTimer("query", registry)

		q := store.Query{
			Filter: query.Filter{"seq": map[string]any{query.OpLt: benchDocSpread / 2}},
			Limit:  10,
		}

		// cleanup
		b.Cleanup(func() {
			iter(func(_ int, id string) {
				if _, err := st.Delete(benchCollection, id); err != nil {
					log.Printf("(query) - error deleting document: %v\n", err)
				}
			})
		})

		b.SetParallelism(benchNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			for pb.Next() {
				start := time.Now()
				_, err := st.Query(benchCollection, q)
				timer.UpdateSince(start)
				if err != nil {
					log.Printf("(query) - error querying collection: %v\n", err)
				}
			}
		})
	})

	results["query"] = queryResult
	printResult("query", queryResult, registry)

	updateResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("update") {
			return
		}

		// prepare and insert documents
		getID, iter := benchIDs("update")
		seedDocuments(iter, "update")
		timer := gometrics.GetOrRegisterTimer("update", registry)

		// cleanup
		b.Cleanup(func() {
			iter(func(_ int, id string) {
				if _, err := st.Delete(benchCollection, id); err != nil {
					log.Printf("(update) - error deleting document: %v\n", err)
				}
			})
		})

		b.SetParallelism(benchNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				start := time.Now()
				_, err := st.Update(benchCollection, getID(counter), document.Document{"seq": counter})
				timer.UpdateSince(start)
				if err != nil {
					log.Printf("(update) - error updating document: %v\n", err)
				}
				counter++
			}
		})
	})

	results["update"] = updateResult
	printResult("update", updateResult, registry)

	mixedResult := testing.Benchmark(func(b *testing.B) {
		if shouldSkip("mixed") {
			return
		}

		// prepare and insert documents
		getID, iter := benchIDs("mixed")
		seedDocuments(iter, "mixed")
		timer := gometrics.GetOrRegisterTimer("mixed", registry)

		// cleanup
		b.Cleanup(func() {
			iter(func(_ int, id string) {
				if _, err := st.Delete(benchCollection, id); err != nil {
					log.Printf("(mixed) - error deleting document: %v\n", err)
				}
			})
		})

		b.SetParallelism(benchNumThreads)

		b.ResetTimer()

		b.RunParallel(func(pb *testing.PB) {
			counter := 0
			for pb.Next() {
				id := getID(counter)
				start := time.Now()

				var err error
				switch counter % 4 {
				case 0: // insert (recreates the document if a delete got there first)
					_, err = st.Insert(benchCollection, document.Document{"id": id, "name": "bench", "seq": counter})
				case 1: // get
					_, _, err = st.FindByID(benchCollection, id)
				case 2: // update
					_, err = st.Update(benchCollection, id, document.Document{"seq": counter})
				case 3: // delete
					_, err = st.Delete(benchCollection, id)
				}
				timer.UpdateSince(start)

				// concurrent deletes make missing documents expected here
				if err != nil && !errors.Is(err, store.ErrDocumentNotFound) {
					log.Printf("(mixed) - error performing operation (%d): %v\n", counter%4, err)
				}
				counter++
			}
		})
	})

	results["mixed"] = mixedResult
	printResult("mixed", mixedResult, registry)

	// Write results to csv if specified
	if csvPath := viper.GetString("csv"); csvPath != "" {
		fmt.Printf("\nExporting results to CSV: %s\n", csvPath)
		if err := writeResultsToCSV(csvPath, results, registry); err != nil {
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
	// Check if the test is in the skip list
	for _, skip := range benchSkip {
		if test == skip {
			return true
		}
	}
	return false
}

// creates an array of test document ids and functions to work with them
func benchIDs(prefix string) (func(int) string, func(func(int, string))) {
	ids := make([]string, benchDocSpread)
	for i := 0; i < benchDocSpread; i++ {
		ids[i] = fmt.Sprintf("bench-%s-%d", prefix, i)
	}

	// Function to get an id by index (with wraparound)
	getID := func(i int) string {
		return ids[i%benchDocSpread]
	}

	// Function to iterate over all ids and apply a function to each
	iterateIDs := func(fn func(int, string)) {
		for i, id := range ids {
			fn(i, id)
		}
	}

	return getID, iterateIDs
}

// seedDocuments inserts one document per id so read benchmarks hit existing data
func seedDocuments(iter func(func(int, string)), test string) {
	iter(func(i int, id string) {
		_, err := st.Insert(benchCollection, document.Document{"id": id, "name": "bench", "seq": i})
		if err != nil {
			log.Printf("(%s) - error inserting document: %v\n", test, err)
		}
	})
}

// percentiles returns the p50/p95/p99 latencies recorded for a test, or ok=false
// if nothing was recorded (e.g. the test was skipped)
func percentiles(test string, registry gometrics.Registry) (p50, p95, p99 time.Duration, ok bool) {
	timer, isTimer := registry.Get(test).(gometrics.Timer)
	if !isTimer || timer.Count() == 0 {
		return 0, 0, 0, false
	}

	ps := timer.Percentiles([]float64{0.5, 0.95, 0.99})
	return time.Duration(int64(ps[0])), time.Duration(int64(ps[1])), time.Duration(int64(ps[2])), true
}

// printResult prints the result of a benchmark test in a formatted way
func printResult(test string, result testing.BenchmarkResult, registry gometrics.Registry) {
	if result.NsPerOp() == 0 {
		fmt.Printf("%-20sskipped\n", test)
		return
	}

	nsPerOp := math.Max(float64(result.NsPerOp()), 1) // prevent division by zero
	opsPerSec := 1.0 / (nsPerOp / 1e9)

	// Print the formatted result
	fmt.Printf("%-20s%.0fns/op (%s/op)\t%.0f ops/sec\n", test, nsPerOp, time.Duration(nsPerOp), opsPerSec)

	if p50, p95, p99, ok := percentiles(test, registry); ok {
		fmt.Printf("%-20sp50=%s p95=%s p99=%s\n", "", p50, p95, p99)
	}
}

// writeResultsToCSV writes benchmark results to a CSV file
func writeResultsToCSV(csvPath string, results map[string]testing.BenchmarkResult, registry gometrics.Registry) error {
	file, err := os.Create(csvPath)
	if err != nil {
		return fmt.Errorf("failed to create CSV file: %v", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	header := []string{
		"Test", "NsPerOp", "DurationPerOp", "OpsPerSec", "P50", "P95", "P99", "Skipped",
		"Backend", "Codec", "Caching", "Indexing",
		"Threads", "LargeDocSizeKB", "Docs Count",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %v", err)
	}

	// Write test results
	for test, result := range results {
		var nsPerOp float64
		var opsPerSec float64
		var skipped string

		if result.NsPerOp() == 0 {
			skipped = "true"
			nsPerOp = 0
			opsPerSec = 0
		} else {
			skipped = "false"
			nsPerOp = math.Max(float64(result.NsPerOp()), 1)
			opsPerSec = 1.0 / (nsPerOp / 1e9)
		}

		p50, p95, p99, _ := percentiles(test, registry)

		row := []string{
			test,
			fmt.Sprintf("%.0f", nsPerOp),
			time.Duration(nsPerOp).String(),
			fmt.Sprintf("%.0f", opsPerSec),
			p50.String(),
			p95.String(),
			p99.String(),
			skipped,
			viper.GetString("backend"),
			viper.GetString("codec"),
			strconv.FormatBool(viper.GetBool("caching")),
			strconv.FormatBool(viper.GetBool("indexing")),
			strconv.Itoa(benchNumThreads),
			strconv.Itoa(benchLargeDocsKB),
			strconv.Itoa(benchDocSpread),
		}

		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row for test %s: %v", test, err)
		}
	}

	return nil
}
