// Package main provides a stress testing tool for the chat WebSocket server.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
)

// Metrics tracks the test results
type Metrics struct {
	ConnectionsAttempted int64
	ConnectionsSuccess   int64
	ConnectionsFailed    int64
	MessagesSent         int64
	MessagesReceived     int64
	Errors               int64
}

var metrics Metrics

func main() {
	host := flag.String("host", "localhost:8375", "API server host")
	clients := flag.Int("clients", 20, "Number of concurrent client pairs")
	duration := flag.Duration("duration", 30*time.Second, "Test duration")
	interval := flag.Duration("interval", 5*time.Second, "Delay between messages per client")
	flag.Parse()

	log.Printf("Starting chat stress test")
	log.Printf("Target: %s", *host)
	log.Printf("Client pairs: %d", *clients)
	log.Printf("Duration: %v", *duration)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup
	stopChan := make(chan struct{})

	// Each pair signs up two throwaway accounts and chats between them.
	for i := 0; i < *clients; i++ {
		a, aID, err := signup(*host, fmt.Sprintf("load_a_%d_%d", time.Now().UnixNano(), i))
		if err != nil {
			log.Fatalf("signup failed: %v", err)
		}
		b, bID, err := signup(*host, fmt.Sprintf("load_b_%d_%d", time.Now().UnixNano(), i))
		if err != nil {
			log.Fatalf("signup failed: %v", err)
		}

		wg.Add(2)
		go runClient(*host, a, bID, i*2, *interval, stopChan, &wg)
		go runClient(*host, b, aID, i*2+1, *interval, stopChan, &wg)
		time.Sleep(50 * time.Millisecond) // Stagger connections
	}

	select {
	case <-time.After(*duration):
		log.Println("Test duration reached")
	case <-interrupt:
		log.Println("Interrupted by user")
	}

	close(stopChan)
	log.Println("Waiting for clients to disconnect...")
	wg.Wait()

	printMetrics()
}

func signup(host, username string) (token, userID string, err error) {
	signupURL := fmt.Sprintf("http://%s/api/auth/signup", host)
	payload := map[string]string{
		"username": username,
		"email":    username + "@loadtest.example.com",
		"password": "LoadTest-Pass-99!",
	}
	body, _ := json.Marshal(payload)

	resp, err := http.Post(signupURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return "", "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusCreated {
		return "", "", fmt.Errorf("signup failed with status %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
		User  struct {
			ID string `json:"id"`
		} `json:"user"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", "", err
	}
	return result.Token, result.User.ID, nil
}

func runClient(host, token, otherUserID string, id int, interval time.Duration, stopChan <-chan struct{}, wg *sync.WaitGroup) {
	defer wg.Done()
	atomic.AddInt64(&metrics.ConnectionsAttempted, 1)

	u := url.URL{Scheme: "ws", Host: host, Path: "/api/ws/chat", RawQuery: "token=" + token}

	dialer := websocket.DefaultDialer
	c, resp, err := dialer.Dial(u.String(), nil)
	if err != nil {
		atomic.AddInt64(&metrics.ConnectionsFailed, 1)
		atomic.AddInt64(&metrics.Errors, 1)
		return
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = c.Close() }()

	atomic.AddInt64(&metrics.ConnectionsSuccess, 1)

	// Read loop
	go func() {
		for {
			_, _, err := c.ReadMessage()
			if err != nil {
				return
			}
			atomic.AddInt64(&metrics.MessagesReceived, 1)
		}
	}()

	// Join the conversation so broadcasts come back to this client.
	join := map[string]string{"type": "join", "user_id": otherUserID}
	joinJSON, _ := json.Marshal(join)
	if err := c.WriteMessage(websocket.TextMessage, joinJSON); err != nil {
		atomic.AddInt64(&metrics.Errors, 1)
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-stopChan:
			_ = c.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-ticker.C:
			msg := map[string]string{
				"type":    "message",
				"user_id": otherUserID,
				"text":    fmt.Sprintf("Stress test message from client %d", id),
			}
			msgJSON, _ := json.Marshal(msg)
			if err := c.WriteMessage(websocket.TextMessage, msgJSON); err != nil {
				atomic.AddInt64(&metrics.Errors, 1)
				return
			}
			atomic.AddInt64(&metrics.MessagesSent, 1)
		}
	}
}

func printMetrics() {
	log.Println("Test results")
	log.Printf("Connections Attempted: %d", atomic.LoadInt64(&metrics.ConnectionsAttempted))
	log.Printf("Connections Successful: %d", atomic.LoadInt64(&metrics.ConnectionsSuccess))
	log.Printf("Connections Failed: %d", atomic.LoadInt64(&metrics.ConnectionsFailed))
	log.Printf("Messages Sent: %d", atomic.LoadInt64(&metrics.MessagesSent))
	log.Printf("Messages Received: %d", atomic.LoadInt64(&metrics.MessagesReceived))
	log.Printf("Total Errors: %d", atomic.LoadInt64(&metrics.Errors))
}
