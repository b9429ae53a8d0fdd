// zapctl connects to a ZAP endpoint and runs a single catalog, resource,
// or consensus operation, printing its JSON result to stdout.
//
// Usage:
//
//	zapctl -uri zap://localhost:9999 -op list
//	zapctl -uri zap://localhost:9999 -op search -query "read a file"
//	zapctl -uri zap://localhost:9999 -op call -tool native/fs.read -args '{"path":"/etc/hosts"}'
//	zapctl -uri zap+tls://gateway.example.com -op consensus -question "use postgres or sqlite?" -participants model-a,model-b,model-c
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jeeves-cluster-organization/zapcore/coreengine/observability"
	"github.com/jeeves-cluster-organization/zapcore/zapclient"
	"github.com/jeeves-cluster-organization/zapcore/zapconfig"
	"github.com/jeeves-cluster-organization/zapcore/zaptypes"
)

// stdLogger is a minimal structured logger over the standard library
// for connection lifecycle messages on stderr, keeping stdout clean for
// the JSON result.
type stdLogger struct{}

func (l *stdLogger) Info(msg string, keysAndValues ...any) {
	log.Printf("[INFO] %s %v", msg, keysAndValues)
}

func (l *stdLogger) Error(msg string, keysAndValues ...any) {
	log.Printf("[ERROR] %s %v", msg, keysAndValues)
}

func main() {
	uri := flag.String("uri", "", "ZAP endpoint URI (zap://, zap+tls://, zap+unix://)")
	op := flag.String("op", "list", "operation: list, search, get, call, ping, consensus")
	query := flag.String("query", "", "free-text query for -op search")
	toolID := flag.String("tool", "", "tool id for -op get / -op call")
	args := flag.String("args", "{}", "JSON-encoded arguments for -op call")
	question := flag.String("question", "", "question for -op consensus")
	participants := flag.String("participants", "", "comma-separated participant/model ids for -op consensus")
	certifiedOnly := flag.Bool("certified-only", false, "restrict -op list to certified (stable) tools")
	timeout := flag.Duration("timeout", 10*time.Second, "operation timeout")
	clientConfig := flag.String("client-config", "{}", `JSON client tunables, e.g. '{"request_timeout_ms":5000}'`)
	consensusConfig := flag.String("consensus-config", "{}", `JSON consensus thresholds for -op consensus, e.g. '{"rounds":5,"beta2":0.95}'`)
	traceEndpoint := flag.String("trace-endpoint", "", "OTLP/gRPC collector address for tracing (disabled if empty)")
	flag.Parse()

	logger := &stdLogger{}

	if *uri == "" {
		fmt.Fprintln(os.Stderr, "zapctl: -uri is required")
		flag.Usage()
		os.Exit(2)
	}

	if *traceEndpoint != "" {
		shutdown, err := observability.InitTracer(zapclient.ClientName, zapclient.ClientVersion, *traceEndpoint)
		if err != nil {
			logger.Error("tracing disabled", "error", err.Error())
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error("tracer shutdown failed", "error", err.Error())
				}
			}()
		}
	}

	clientCfg, err := parseConfigFlag(*clientConfig)
	if err != nil {
		log.Fatalf("zapctl: invalid -client-config: %v", err)
	}
	consensusCfg, err := parseConfigFlag(*consensusConfig)
	if err != nil {
		log.Fatalf("zapctl: invalid -consensus-config: %v", err)
	}

	client, err := zapclient.FromURI(*uri, zapconfig.ClientConfigFromMap(clientCfg))
	if err != nil {
		log.Fatalf("zapctl: parse uri: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	welcome, err := client.Connect(ctx)
	if err != nil {
		log.Fatalf("zapctl: connect: %v", err)
	}
	logger.Info("connected", "endpoint", *uri, "endpointName", welcome.EndpointInfo.Name, "protocolVersion", welcome.ProtocolVersion)
	defer func() {
		if err := client.Close(); err != nil {
			logger.Error("close failed", "error", err.Error())
		}
	}()

	result, err := runOp(ctx, client, *op, *query, *toolID, *args, *question, *participants, *certifiedOnly, zapconfig.ConsensusConfigFromMap(consensusCfg))
	if err != nil {
		log.Fatalf("zapctl: %s: %v", *op, err)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(result); err != nil {
		log.Fatalf("zapctl: encode result: %v", err)
	}
}

func parseConfigFlag(raw string) (map[string]any, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, err
	}
	return m, nil
}

func runOp(ctx context.Context, client *zapclient.Client, op, query, toolID, rawArgs, question, participants string, certifiedOnly bool, consensusCfg *zaptypes.ConsensusConfig) (any, error) {
	switch op {
	case "list":
		return client.ListTools(ctx, certifiedOnly)
	case "search":
		return client.SearchTools(ctx, query)
	case "get":
		return client.GetTool(ctx, toolID)
	case "call":
		var arguments map[string]any
		if err := json.Unmarshal([]byte(rawArgs), &arguments); err != nil {
			return nil, fmt.Errorf("invalid -args JSON: %w", err)
		}
		return client.CallTool(ctx, toolID, arguments, nil)
	case "ping":
		latency, serverTime, err := client.Ping(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"latencyMs": latency.Milliseconds(), "serverTime": serverTime}, nil
	case "consensus":
		ids := splitNonEmpty(participants)
		answer, certificate, err := client.CommitteeQuery(ctx, question, ids, consensusCfg)
		if err != nil {
			return nil, err
		}
		return map[string]any{"answer": answer, "certificate": certificate}, nil
	default:
		return nil, fmt.Errorf("unknown -op %q (want list, search, get, call, ping, consensus)", op)
	}
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
