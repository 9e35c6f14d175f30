package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/clauseiq/clauseiq/internal/client"
)

func main() {
	server := flag.String("server", "http://localhost:5000", "server base URL")
	upload := flag.String("upload", "", "comma-separated files to upload instead of chatting")
	flag.Parse()

	if *upload != "" {
		if err := runUpload(*server, strings.Split(*upload, ",")); err != nil {
			fmt.Fprintln(os.Stderr, "error:", err)
			os.Exit(1)
		}
		return
	}

	if err := runChat(*server); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func runUpload(server string, paths []string) error {
	files := make([]client.FileItem, 0, len(paths))
	for _, p := range paths {
		p = strings.TrimSpace(p)
		data, err := os.ReadFile(p)
		if err != nil {
			return fmt.Errorf("read %s: %w", p, err)
		}
		contentType := mime.TypeByExtension(filepath.Ext(p))
		files = append(files, client.FileItem{
			Name:        filepath.Base(p),
			ContentType: contentType,
			Data:        data,
		})
	}

	u := client.NewUploader(server)
	u.OnProgress = func(p client.Progress) {
		fmt.Printf("\r%3d%% (%d/%d bytes, ~%ds left)", p.Percent, p.BytesSent, p.BytesTotal, p.SecondsRemaining)
	}

	stored, err := u.Submit(context.Background(), files)
	fmt.Println()
	if err != nil {
		return err
	}

	for _, f := range stored {
		fmt.Printf("uploaded %s (%d bytes) -> %s\n", f.Name, f.Size, f.URL)
	}
	return nil
}

func runChat(server string) error {
	wsURL := strings.Replace(server, "http", "ws", 1) + "/ws"

	chat := client.NewChat()
	chat.OnUpdate = func() {
		entries := chat.Entries()
		if len(entries) == 0 {
			return
		}
		last := entries[len(entries)-1]
		status := ""
		if last.Pending {
			status = " (sending)"
		}
		fmt.Printf("[%s]%s %s\n", last.Sender, status, last.Text)
	}

	if err := chat.Connect(context.Background(), wsURL); err != nil {
		return err
	}
	defer chat.Close()

	fmt.Println("connected, type a message and press enter")

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if _, err := chat.Send(text); err != nil {
			return err
		}
	}
	return scanner.Err()
}
