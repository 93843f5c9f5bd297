/* Copyright 2024 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package main subscribes to an MQTT topic, maps each incoming JSON
// message with a template, and publishes the results.
//
//	mqmap -h tcp://localhost -t events -pub mapped -tf template.yaml
package main

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/Comcast/remap/core"
	"github.com/Comcast/remap/funcs"
	"github.com/Comcast/remap/funcs/ecmascript"
	"github.com/Comcast/remap/tools"
	"github.com/Comcast/remap/util"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

func main() {
	var (
		// Follow mosquitto_sub command line args.

		broker    = flag.String("h", "tcp://localhost", "Broker hostname")
		clientId  = flag.String("i", "mqmap", "Client id")
		port      = flag.Int("p", 1883, "Broker port")
		keepAlive = flag.Int("k", 10, "Keep-alive in seconds")
		userName  = flag.String("u", "", "Username")
		password  = flag.String("P", "", "Password")
		reconnect = flag.Bool("reconnect", false, "Automatically attempt to reconnect")
		clean     = flag.Bool("c", true, "Clean session")
		quiesce   = flag.Int("quiesce", 100, "Disconnection quiescence (in milliseconds)")
		insecure  = flag.Bool("insecure", false, "Skip broker cert checking")

		subTopic = flag.String("t", "", "subscription topic")
		qos      = flag.Int("qos", 0, "QoS for subscription and publication")
		pubTopic = flag.String("pub", "", "topic for mapped messages")

		templateFile = flag.String("tf", "", "filename for template (JSON or YAML)")
		libsFile     = flag.String("libs", "", "filename for ECMAScript function sources")

		injectTopic = flag.Bool("inject-topic", false, "put topic in map of incoming messages")
	)

	flag.BoolVar(&util.Logging, "v", false, "verbosity")

	flag.Parse()

	if *subTopic == "" || *pubTopic == "" {
		fmt.Fprintf(os.Stderr, "need a subscription topic (-t) and a publication topic (-pub)\n")
		os.Exit(1)
	}
	if *templateFile == "" {
		fmt.Fprintf(os.Stderr, "need a template (-tf)\n")
		os.Exit(1)
	}

	template, err := tools.LoadTemplate(*templateFile)
	if err != nil {
		log.Fatal(err)
	}

	fs := funcs.Standard()
	if *libsFile != "" {
		srcs, err := tools.LoadLibs(*libsFile)
		if err != nil {
			log.Fatal(err)
		}
		compiled, err := ecmascript.NewInterpreter().CompileFuncs(srcs)
		if err != nil {
			log.Fatal(err)
		}
		for name, f := range compiled {
			fs[name] = f
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mqtt.ERROR = log.New(os.Stderr, "mqtt.error", 0)

	opts := mqtt.NewClientOptions()

	opts.AddBroker(fmt.Sprintf("%s:%d", *broker, *port))
	opts.SetClientID(*clientId)
	opts.SetKeepAlive(time.Second * time.Duration(*keepAlive))

	opts.Username = *userName
	opts.Password = *password
	opts.AutoReconnect = *reconnect
	opts.CleanSession = *clean

	opts.SetTLSConfig(&tls.Config{
		InsecureSkipVerify: *insecure,
	})

	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)

	handler := func(client mqtt.Client, msg mqtt.Message) {
		util.Logf("incoming: %s %s", msg.Topic(), msg.Payload())

		var source interface{}
		if err := json.Unmarshal(msg.Payload(), &source); err != nil {
			log.Printf("Couldn't JSON-parse payload: %s", msg.Payload())
			return
		}
		if m, is := source.(map[string]interface{}); is && *injectTopic {
			m["topic"] = msg.Topic()
		}

		out, err := core.Map(ctx, source, template, fs, nil)
		if err != nil {
			log.Printf("Map error: %s", err)
			return
		}

		js, err := json.Marshal(core.Scrub(out))
		if err != nil {
			log.Printf("Failed to marshal %#v", out)
			return
		}

		token := client.Publish(*pubTopic, byte(*qos), false, js)
		token.Wait()
		if token.Error() != nil {
			log.Fatalf("Publish error: %s", token.Error())
		}
		util.Logf("published: %s %s", *pubTopic, js)
	}

	log.Printf("Attempting to connect to broker")
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		log.Fatal(token.Error())
	}
	log.Printf("Connected to broker")

	for _, topic := range strings.Split(*subTopic, ",") {
		if topic == "" {
			continue
		}
		log.Printf("Subscribing to %s (%d)", topic, *qos)
		if t := client.Subscribe(topic, byte(*qos), handler); t.Wait() && t.Error() != nil {
			log.Fatal(t.Error())
		}
	}

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs

	log.Printf("Disconnecting")
	client.Disconnect(uint(*quiesce))
}
