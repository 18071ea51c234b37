package main

import (
	"fmt"
	"net/http"
	"os"
	"time"
)

// Usage example on the command line:
// > SERVICE_URL=http://localhost:8080/contacts go run main.go
func main() {
	url := os.Getenv("SERVICE_URL")
	if url == "" {
		url = "http://localhost:8080/contacts"
	}
	totalWaitTime := 0
	for {
		res, err := http.Get(url)
		if err == nil {
			res.Body.Close()
			// An empty contact book answers with NOT FOUND, which still means the service is up.
			if res.StatusCode == http.StatusOK || res.StatusCode == http.StatusNotFound {
				fmt.Println(res.Status)
				break
			} else {
				fmt.Println(res.Status)
			}
		} else {
			fmt.Println(err)
		}
		totalWaitTime += 5
		fmt.Printf("Waiting %d seconds", totalWaitTime)
		fmt.Println()
		time.Sleep(5 * time.Second)
	}
}
