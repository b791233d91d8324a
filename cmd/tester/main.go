package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"time"
)

// Manual tester: dials the fault endpoint, sends a payload with an
// embedded directive and reports everything that comes back until the
// server side closes.
func main() {
	addr := flag.String("addr", "127.0.0.1:11111", "Fault endpoint address")
	payload := flag.String("payload", "ACT[SEND=Hello!%0D%0A,DATA=1000,WAIT=1000,CLOSE]", "Payload to send (directive may be embedded anywhere)")
	flag.Parse()

	fmt.Println("--- Faultpoint Tester ---")
	log.Printf("Dialing %s...", *addr)

	conn, err := net.Dial("tcp", *addr)
	if err != nil {
		log.Fatalf("Failed to dial %s: %v", *addr, err)
	}
	defer conn.Close()

	start := time.Now()
	if _, err := conn.Write([]byte(*payload)); err != nil {
		log.Fatalf("Failed to write payload: %v", err)
	}
	log.Printf("Sent %d bytes: %q", len(*payload), *payload)

	buf := make([]byte, 32*1024)
	var total int
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			total += n
			log.Printf("<- %d bytes (first 64 shown): %q", n, clip(buf[:n], 64))
		}
		if err != nil {
			if err == io.EOF {
				log.Printf("Server closed the connection after %v, %d bytes total.", time.Since(start), total)
				return
			}
			log.Fatalf("Read error after %v: %v", time.Since(start), err)
		}
	}
}

func clip(b []byte, n int) []byte {
	if len(b) > n {
		return b[:n]
	}
	return b
}
