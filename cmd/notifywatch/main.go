// Package main provides a console client that prints live notifications for one reader.
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
	"syscall"
	"time"

	"litreview/internal/notifications"

	"github.com/gorilla/websocket"
)

func main() {
	host := flag.String("host", "localhost:8375", "API server host")
	username := flag.String("username", "", "Reader username")
	password := flag.String("password", "", "Reader password")
	flag.Parse()

	if *username == "" || *password == "" {
		log.Fatal("usage: notifywatch -username <name> -password <secret> [-host localhost:8375]")
	}

	token, err := login(*host, *username, *password)
	if err != nil {
		log.Fatalf("Login failed: %v", err)
	}
	log.Printf("Logged in as %s", *username)

	u := url.URL{Scheme: "ws", Host: *host, Path: "/api/ws/notifications", RawQuery: "token=" + url.QueryEscape(token)}
	c, resp, err := websocket.DefaultDialer.Dial(u.String(), nil)
	if err != nil {
		log.Fatalf("Dial failed: %v", err)
	}
	if resp != nil && resp.Body != nil {
		defer func() { _ = resp.Body.Close() }()
	}
	defer func() { _ = c.Close() }()
	log.Printf("Listening on %s (Ctrl+C to stop)", u.Host)

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			var event notifications.Event
			if err := c.ReadJSON(&event); err != nil {
				if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
					log.Printf("Connection closed: %v", err)
				}
				return
			}
			printEvent(event)
		}
	}()

	select {
	case <-done:
	case <-interrupt:
		log.Println("Interrupted by user")
		_ = c.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		select {
		case <-done:
		case <-time.After(time.Second):
		}
	}
}

func login(host, username, password string) (string, error) {
	loginURL := fmt.Sprintf("http://%s/api/auth/login", host)
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Post(loginURL, "application/json", bytes.NewBuffer(body))
	if err != nil {
		return "", err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("login failed with status %d", resp.StatusCode)
	}

	var result struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}
	return result.Token, nil
}

func printEvent(e notifications.Event) {
	ts := e.CreatedAt.Local().Format("15:04:05")
	switch e.Type {
	case notifications.EventReviewCreated:
		fmt.Printf("[%s] %s reviewed your ticket #%d\n", ts, e.ActorName, deref(e.TicketID))
	case notifications.EventFollowCreated:
		fmt.Printf("[%s] %s started following you\n", ts, e.ActorName)
	default:
		fmt.Printf("[%s] %s from %s\n", ts, e.Type, e.ActorName)
	}
}

func deref(id *uint) uint {
	if id == nil {
		return 0
	}
	return *id
}
