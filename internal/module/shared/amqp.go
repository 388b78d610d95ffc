package shared

import (
	"context"
	"errors"
	"net"
	"time"

	"github.com/DODOEX/huffcodec/utils/config"
	"github.com/rs/zerolog"
	amqplib "github.com/streadway/amqp"
) //导入mq包

var ErrAmqpNotConnected = errors.New("amqp: not connected")

type Amqp struct {
	logger   zerolog.Logger
	config   *config.Conf
	Exchange string
	Conn     *amqplib.Connection
	Channel  *amqplib.Channel
}

// 创建结构体实例
func NewRabbitMQ(config *config.Conf, logger zerolog.Logger) *Amqp {
	amqp := Amqp{
		logger:   logger.With().Str("name", "amqp").Logger(),
		config:   config,
		Exchange: config.String("amqp.exchange", "huffcodec.job.topic"),
	}

	return &amqp
}

func (a *Amqp) Enabled() bool {
	return a != nil && a.config.String("amqp.url") != ""
}

func (a *Amqp) Connect(ctx context.Context) (err error) {
	if !a.Enabled() {
		a.logger.Info().Msg("amqp.url is empty, job events are disabled")
		return nil
	}

	connectionTimeout := a.config.Duration("amqp.connection-timeout", 30*time.Second)

	a.Conn, err = amqplib.DialConfig(a.config.String("amqp.url"), amqplib.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial: func(network, addr string) (conn net.Conn, err error) {
			conn, err = net.DialTimeout(network, addr, connectionTimeout)
			if err != nil {
				return nil, err
			}

			// Heartbeating hasn't started yet, don't stall forever on a dead server.
			if err := conn.SetDeadline(time.Now().Add(connectionTimeout)); err != nil {
				return nil, err
			}

			return conn, nil
		},
	})
	if err != nil {
		// 失败，等待重试
		return err
	}

	//创建Channel
	a.Channel, err = a.Conn.Channel()
	if err != nil {
		return err
	}

	err = a.Channel.ExchangeDeclare(
		a.Exchange,
		a.config.String("amqp.exchange-type", "topic"),
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		a.logger.Warn().Msgf("%s:%s\n", "创建交换机失败", err)
		return
	}

	return nil
}

// Publish sends msg to the configured exchange under routingKey.
func (a *Amqp) Publish(routingKey string, msg amqplib.Publishing) error {
	if a == nil || a.Channel == nil {
		return ErrAmqpNotConnected
	}
	return a.Channel.Publish(a.Exchange, routingKey, false, false, msg)
}

// 释放资源,建议NewRabbitMQ获取实例后 配合defer使用
func (a *Amqp) Close() error {
	if a == nil {
		return nil
	}
	if a.Channel != nil {
		if err := a.Channel.Close(); err != nil {
			return err
		}
	}
	if a.Conn != nil {
		if err := a.Conn.Close(); err != nil {
			return err
		}
	}
	return nil
}
