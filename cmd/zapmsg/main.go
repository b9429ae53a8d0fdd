// zapmsg is a debugging aid for the ZAP wire envelope: it encodes a JSON
// {"type","id","payload"} object from stdin into a length-prefixed frame
// on stdout, decodes a frame back into JSON, or decodes a frame and prints
// a summary of its shape (type, id, payload key count).
//
// Usage:
//
//	echo '{"type":"ping","id":"abc","payload":{}}' | zapmsg encode > frame.bin
//	zapmsg decode < frame.bin
//	zapmsg inspect < frame.bin
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jeeves-cluster-organization/zapcore/zapwire"
)

const (
	cmdEncode  = "encode"
	cmdDecode  = "decode"
	cmdInspect = "inspect"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case cmdEncode:
		err = handleEncode()
	case cmdDecode:
		err = handleDecode()
	case cmdInspect:
		err = handleInspect()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "zapmsg: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: zapmsg <command>

Commands:
  encode   Read a {"type","id","payload"} JSON object from stdin, write a
           length-prefixed frame to stdout.
  decode   Read a length-prefixed frame from stdin, write its JSON
           object to stdout.
  inspect  Read a length-prefixed frame from stdin, print its type/id and
           payload key count to stdout without re-encoding it.

Examples:
  echo '{"type":"ping","id":"1","payload":{}}' | zapmsg encode | zapmsg inspect
  echo '{"type":"ping","id":"1","payload":{}}' | zapmsg encode | zapmsg decode`)
}

func handleEncode() error {
	input, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}

	var msg zapwire.Message
	if err := json.Unmarshal(input, &msg); err != nil {
		return fmt.Errorf("invalid JSON envelope: %w", err)
	}

	frame, err := msg.Encode()
	if err != nil {
		return fmt.Errorf("encode: %w", err)
	}

	_, err = os.Stdout.Write(frame)
	return err
}

func handleDecode() error {
	msg, err := readFrame(os.Stdin)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(msg)
}

func handleInspect() error {
	msg, err := readFrame(os.Stdin)
	if err != nil {
		return err
	}

	fmt.Printf("type:    %s\n", msg.Type)
	fmt.Printf("id:      %s\n", msg.ID)
	fmt.Printf("payload: %d field(s)\n", len(msg.Payload))
	if msg.Type == "error" {
		fmt.Printf("code:    %v\n", msg.Payload["code"])
		fmt.Printf("message: %v\n", msg.Payload["message"])
	}
	return nil
}

// readFrame reads exactly one length-prefixed frame from r.
func readFrame(r io.Reader) (zapwire.Message, error) {
	prefix := make([]byte, zapwire.LengthPrefixSize)
	if _, err := io.ReadFull(r, prefix); err != nil {
		return zapwire.Message{}, fmt.Errorf("read length prefix: %w", err)
	}

	length, err := zapwire.DecodeLength(prefix)
	if err != nil {
		return zapwire.Message{}, err
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return zapwire.Message{}, fmt.Errorf("read frame body: %w", err)
	}

	return zapwire.Decode(body)
}
