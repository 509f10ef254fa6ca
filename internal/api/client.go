package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/example/vocabtrainer/pkg/models"
)

// Client talks to the remote backend that stores the canonical word corpus
// and training definitions
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the backend at the given base URL
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type listTrainingsResponse struct {
	Trainings []models.Training `json:"trainings"`
	Error     string            `json:"error,omitempty"`
}

type loadTrainingRequest struct {
	TrainingName string `json:"training_name"`
}

type loadTrainingResponse struct {
	Status string        `json:"status"`
	Words  []models.Word `json:"words"`
	Error  string        `json:"error,omitempty"`
}

type createTrainingRequest struct {
	TrainingName string `json:"training_name"`
	FileIndexes  []int  `json:"file_indexes"`
}

type loadUnitRequest struct {
	FileIndex int `json:"file_index"`
}

type statusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// ListTrainings fetches all trainings known to the backend
func (c *Client) ListTrainings(ctx context.Context) ([]models.Training, error) {
	var response listTrainingsResponse
	if err := c.doGet(ctx, "/list_trainings", &response); err != nil {
		return nil, err
	}
	return response.Trainings, nil
}

// LoadTraining fetches a training's full word list. Stored grades arrive
// embedded in each word's knowing_grade and are returned keyed by word id.
func (c *Client) LoadTraining(ctx context.Context, name string) ([]models.Word, map[string]float64, error) {
	var response loadTrainingResponse
	if err := c.doPost(ctx, "/load_training", loadTrainingRequest{TrainingName: name}, &response); err != nil {
		return nil, nil, err
	}

	grades := make(map[string]float64, len(response.Words))
	for _, word := range response.Words {
		grades[word.ID] = word.KnowingGrade
	}
	return response.Words, grades, nil
}

// CreateTraining registers a new training over the given units
func (c *Client) CreateTraining(ctx context.Context, name string, fileIndexes []int) (*models.Training, error) {
	var response statusResponse
	request := createTrainingRequest{TrainingName: name, FileIndexes: fileIndexes}
	if err := c.doPost(ctx, "/create_training", request, &response); err != nil {
		return nil, err
	}
	return &models.Training{
		Name:         name,
		FileIndexes:  fileIndexes,
		LastModified: time.Now().Unix(),
	}, nil
}

// LoadUnit fetches one unit's full word list for ungraded browsing
func (c *Client) LoadUnit(ctx context.Context, fileIndex int) ([]models.Word, error) {
	var response loadTrainingResponse
	if err := c.doPost(ctx, "/memorize_unit", loadUnitRequest{FileIndex: fileIndex}, &response); err != nil {
		return nil, err
	}
	return response.Words, nil
}

// PushGrades uploads one session's batched grade updates
func (c *Client) PushGrades(ctx context.Context, payload *models.SyncPayload) error {
	var response statusResponse
	return c.doPost(ctx, "/update_knowing_grade", payload, &response)
}

// Ping sends a lightweight request so a free-tier backend host stays warm
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/list_trainings", nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ping failed: %v", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("ping failed: backend returned status %d", resp.StatusCode)
	}
	return nil
}

func (c *Client) doGet(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) doPost(ctx context.Context, path string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out interface{}) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %v", req.URL.Path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response from %s: %v", req.URL.Path, err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp statusResponse
		if json.Unmarshal(data, &errResp) == nil && errResp.Error != "" {
			return fmt.Errorf("backend error from %s: %s", req.URL.Path, errResp.Error)
		}
		return fmt.Errorf("backend returned status %d from %s", resp.StatusCode, req.URL.Path)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %v", req.URL.Path, err)
	}
	return nil
}
