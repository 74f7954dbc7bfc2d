package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"time"
)

// Smoke test against a running server: go run ./cmd/test_integration

const (
	defaultBaseURL = "http://localhost:8080"
)

const completeDocument = `ORDEM DE SERVIÇO Nº 4521
Data: 12/03/2024
CNPJ: 12.345.678/0001-90
Solicitante: Maria Souza
Descrição: Troca de peça do compressor
Valor total: R$ 1.234,56
`

const partialDocument = `Ordem de Serviço nº 7788
Descrição: Manutenção preventiva do elevador
`

func main() {
	baseURL := os.Getenv("ORDEX_URL")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	// Wait for server to start
	time.Sleep(2 * time.Second)

	fmt.Println("Starting Integration Test...")

	if !get(baseURL + "/healthz") {
		fmt.Println("FAILED: Health")
		os.Exit(1)
	}
	fmt.Println("PASSED: Health")

	fmt.Println("1. Complete document (patterns only)...")
	res, ok := extract(baseURL, completeDocument)
	if !ok || res["engine"] != "pattern" || res["valor_total"] != "1.234,56" {
		fmt.Printf("FAILED: complete document: %v\n", res)
		os.Exit(1)
	}
	fmt.Println("PASSED: complete document")

	fmt.Println("2. Partial document (escalates)...")
	res, ok = extract(baseURL, partialDocument)
	if !ok || res["engine"] != "pattern+generative" || res["os_num"] != "7788" {
		fmt.Printf("FAILED: partial document: %v\n", res)
		os.Exit(1)
	}
	fmt.Println("PASSED: partial document")
}

func get(url string) bool {
	resp, err := http.Get(url)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

func extract(baseURL, text string) (map[string]any, bool) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="os.txt"`)
	h.Set("Content-Type", "text/plain; charset=utf-8")
	part, err := w.CreatePart(h)
	if err != nil {
		fmt.Printf("Error creating request: %v\n", err)
		return nil, false
	}
	_, _ = part.Write([]byte(text))
	_ = w.Close()

	resp, err := http.Post(baseURL+"/extract", w.FormDataContentType(), &body)
	if err != nil {
		fmt.Printf("Error sending request: %v\n", err)
		return nil, false
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		fmt.Printf("Request failed with status %d: %s\n", resp.StatusCode, string(respBody))
		return nil, false
	}
	fmt.Printf("Response: %s\n", string(respBody))

	var out map[string]any
	if err := json.Unmarshal(respBody, &out); err != nil {
		fmt.Printf("Invalid JSON: %v\n", err)
		return nil, false
	}
	return out, true
}
