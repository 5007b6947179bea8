package main

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"
)

// Config
const (
	BaseURL      = "http://localhost:8080"
	TotalClients = 5000 // 模拟 5000 个并发读者
)

var httpClient *http.Client

func init() {
	// 优化 HTTP Client 配置
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 2000
	t.MaxIdleConnsPerHost = 2000
	t.MaxConnsPerHost = 2000
	httpClient = &http.Client{
		Transport: t,
		Timeout:   10 * time.Second,
	}
}

func main() {
	fmt.Printf("开始压测：%d 个并发请求打公开列表和搜索接口...\n", TotalClients)
	time.Sleep(1 * time.Second)

	var wg sync.WaitGroup
	successCount := 0
	failCount := 0
	var mu sync.Mutex

	start := time.Now()

	for i := 0; i < TotalClients; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()

			var ok bool
			if n%3 == 0 {
				ok = searchPosts("beach", n%5+1)
			} else {
				// 前几页命中缓存，后面的页打到数据库
				ok = listApproved(n%20 + 1)
			}

			mu.Lock()
			if ok {
				successCount++
			} else {
				failCount++
			}
			mu.Unlock()
		}(i)
	}

	wg.Wait()
	duration := time.Since(start)
	qps := float64(TotalClients) / duration.Seconds()

	fmt.Println("--------------------------------------------------")
	fmt.Printf("压测结束，耗时: %v\n", duration)
	fmt.Printf("总请求数: %d\n", TotalClients)
	fmt.Printf("QPS: %.2f\n", qps)
	fmt.Printf("成功: %d\n", successCount)
	fmt.Printf("失败: %d\n", failCount)
	fmt.Println("--------------------------------------------------")
}

func listApproved(page int) bool {
	url := fmt.Sprintf("%s/posts/list/approved?page=%d&limit=10", BaseURL, page)
	return doGet(url)
}

func searchPosts(keyword string, page int) bool {
	url := fmt.Sprintf("%s/posts/search?keyword=%s&page=%d&limit=10", BaseURL, keyword, page)
	return doGet(url)
}

func doGet(url string) bool {
	resp, err := httpClient.Get(url)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return false
	}

	if resp.StatusCode != 200 {
		return false
	}

	// 检查业务状态码
	var result struct {
		Code int `json:"code"`
	}
	if err := json.Unmarshal(respBody, &result); err != nil {
		return false
	}

	return result.Code == 0
}
