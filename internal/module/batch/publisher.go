package batch

import (
	"encoding/json"

	"github.com/DODOEX/huffcodec/internal/common"
	"github.com/DODOEX/huffcodec/internal/module/shared"
	"github.com/DODOEX/huffcodec/utils"
	"github.com/DODOEX/huffcodec/utils/config"
	"github.com/DODOEX/huffcodec/utils/helpers"
	"github.com/rs/zerolog"
	amqplib "github.com/streadway/amqp"
)

//go:generate mockgen -source=publisher.go -destination=mock_publisher.go -package=batch

// ContentEncoding marks message bodies packed with our own container format.
const ContentEncoding = "x-huffcodec"

type JobPublisher interface {
	PublishJob(job *common.JobProfile) error
	PublishRun(run *common.RunProfile) error
}

type amqpPublisher struct {
	logger zerolog.Logger
	amqp   *shared.Amqp
	// 超过该大小的消息体先压缩
	threshold int
}

func NewJobPublisher(config *config.Conf, logger zerolog.Logger, amqp *shared.Amqp) JobPublisher {
	return &amqpPublisher{
		logger:    logger.With().Str("name", "job_publisher").Logger(),
		amqp:      amqp,
		threshold: config.Int("amqp.compress-threshold", 4096),
	}
}

func (p *amqpPublisher) PublishJob(job *common.JobProfile) error {
	return p.publish(job.Target, helpers.Concat("job.", job.Target, ".", string(job.Status)), job)
}

func (p *amqpPublisher) PublishRun(run *common.RunProfile) error {
	return p.publish(run.Target, helpers.Concat("run.", run.Target), run)
}

func (p *amqpPublisher) publish(target, key string, v any) error {
	if p.amqp == nil || p.amqp.Conn == nil {
		utils.TotalAmqpMessages.WithLabelValues(target, "skip").Inc()
		return nil
	}
	if p.amqp.Conn.IsClosed() {
		p.logger.Error().Msg("connection is closed, skip amqp publish!")
		utils.TotalAmqpMessages.WithLabelValues(target, "skip").Inc()
		return nil
	}

	msg, err := encodeMessage(v, p.threshold)
	if err != nil {
		return err
	}

	if err := p.amqp.Publish(key, msg); err != nil {
		utils.TotalAmqpMessages.WithLabelValues(target, "fail").Inc()
		return err
	}
	utils.TotalAmqpMessages.WithLabelValues(target, "success").Inc()
	return nil
}

func encodeMessage(v any, threshold int) (amqplib.Publishing, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return amqplib.Publishing{}, err
	}

	msg := amqplib.Publishing{
		ContentType: "application/json",
		Body:        body,
	}
	if threshold > 0 && len(body) > threshold {
		if packed, err := helpers.Compress(body); err == nil && len(packed) < len(body) {
			msg.ContentEncoding = ContentEncoding
			msg.Body = packed
		}
	}
	return msg, nil
}

// DecodeMessage returns the JSON body of a message built by this package.
func DecodeMessage(msg amqplib.Publishing) ([]byte, error) {
	if msg.ContentEncoding == ContentEncoding {
		return helpers.Decompress(msg.Body)
	}
	return msg.Body, nil
}
