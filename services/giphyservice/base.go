package giphyservice

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"emperror.dev/errors"
	"github.com/go-openapi/runtime"
	httptransport "github.com/go-openapi/runtime/client"
	"github.com/go-openapi/strfmt"
	"gitlab.com/BIC_Dev/trabajo-bot/configs"
	"gitlab.com/BIC_Dev/trabajo-bot/utils/logging"
	"go.uber.org/zap"
)

// ErrDisabled is returned when no API key is configured
const ErrDisabled = errors.Sentinel("giphy is not configured")

// ErrNoResults is returned when Giphy has nothing for the tag
const ErrNoResults = errors.Sentinel("no gif found")

// GiphyService struct
type GiphyService struct {
	Transport *httptransport.Runtime
	Auth      runtime.ClientAuthInfoWriter
	Schemes   []string
	Timeout   time.Duration
}

// RandomGIFResponse is the part of /gifs/random the bot reads
type RandomGIFResponse struct {
	Data json.RawMessage `json:"data"`
	Meta struct {
		Status int    `json:"status"`
		Msg    string `json:"msg"`
	} `json:"meta"`
}

type gif struct {
	ID     string `json:"id"`
	URL    string `json:"url"`
	Images struct {
		Original struct {
			URL string `json:"url"`
		} `json:"original"`
	} `json:"images"`
}

// InitService returns nil when apiKey is empty
func InitService(ctx context.Context, config *configs.Config, apiKey string, client *http.Client) *GiphyService {
	ctx = logging.AddValues(ctx, zap.String("scope", logging.GetFuncName()))

	if apiKey == "" {
		logger := logging.Logger(ctx)
		logger.Info("giphy_log", zap.String("status", "disabled"))
		return nil
	}

	schemes := []string{config.Giphy.Scheme}
	if config.Giphy.Scheme == "" {
		schemes = []string{"https"}
	}

	timeout := config.Giphy.Timeout
	if timeout <= 0 {
		timeout = httptransport.DefaultTimeout
	}

	return &GiphyService{
		Transport: httptransport.NewWithClient(config.Giphy.Host, config.Giphy.BasePath, schemes, client),
		Auth:      httptransport.APIKeyAuth("api_key", "query", apiKey),
		Schemes:   schemes,
		Timeout:   timeout,
	}
}

// RandomGIF returns the original-size URL of a random GIF for tag
func (gs *GiphyService) RandomGIF(ctx context.Context, tag string, rating string) (string, error) {
	if gs == nil {
		return "", ErrDisabled
	}

	result, err := gs.Transport.Submit(&runtime.ClientOperation{
		ID:                 "getRandomGif",
		Method:             http.MethodGet,
		PathPattern:        "/gifs/random",
		ProducesMediaTypes: []string{runtime.JSONMime},
		ConsumesMediaTypes: []string{runtime.JSONMime},
		Schemes:            gs.Schemes,
		AuthInfo:           gs.Auth,
		Context:            ctx,
		Params: runtime.ClientRequestWriterFunc(func(r runtime.ClientRequest, _ strfmt.Registry) error {
			if err := r.SetTimeout(gs.Timeout); err != nil {
				return err
			}

			if tag != "" {
				if err := r.SetQueryParam("tag", tag); err != nil {
					return err
				}
			}

			if rating != "" {
				return r.SetQueryParam("rating", rating)
			}

			return nil
		}),
		Reader: runtime.ClientResponseReaderFunc(readRandomGIF),
	})
	if err != nil {
		return "", errors.WrapIf(err, "requesting random gif")
	}

	url, ok := result.(string)
	if !ok || url == "" {
		return "", ErrNoResults
	}

	return url, nil
}

func readRandomGIF(response runtime.ClientResponse, consumer runtime.Consumer) (interface{}, error) {
	if response.Code()/100 != 2 {
		return nil, runtime.NewAPIError("getRandomGif", response.Message(), response.Code())
	}

	var payload RandomGIFResponse
	if err := consumer.Consume(response.Body(), &payload); err != nil {
		return nil, errors.Wrap(err, "decoding random gif")
	}

	// Giphy sends an empty array instead of an object when nothing matched
	data := bytes.TrimSpace(payload.Data)
	if len(data) == 0 || data[0] != '{' {
		return "", nil
	}

	var g gif
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, errors.Wrap(err, "decoding gif")
	}

	if g.Images.Original.URL != "" {
		return g.Images.Original.URL, nil
	}

	return g.URL, nil
}
