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

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	bolt "go.etcd.io/bbolt"
)

var templatesBucket = []byte("templates")

// Storage persists named templates.
type Storage struct {
	Debug    bool
	filename string
	db       *bolt.DB
}

func NewStorage(filename string) (*Storage, error) {
	return &Storage{
		filename: filename,
	}, nil
}

func (s *Storage) Open(ctx context.Context) error {
	opts := &bolt.Options{
		Timeout: time.Second,
	}

	db, err := bolt.Open(s.filename, 0644, opts)
	if err != nil {
		return err
	}
	s.db = db
	return s.db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(templatesBucket)
		return err
	})
}

func (s *Storage) Close(ctx context.Context) error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Storage) logf(format string, args ...interface{}) {
	if s == nil {
		return
	}
	if s.Debug {
		log.Printf("Storage "+format, args...)
	}
}

// NotFound is returned by GetTemplate when the name is unknown.
type NotFound struct {
	Name string
}

func (e *NotFound) Error() string {
	return fmt.Sprintf(`template "%s" not found`, e.Name)
}

func (s *Storage) PutTemplate(ctx context.Context, name string, template interface{}) error {
	if s == nil {
		return nil
	}
	js, err := json.Marshal(&template)
	if err != nil {
		return err
	}
	s.logf("PutTemplate %s (%d bytes)", name, len(js))
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(templatesBucket).Put([]byte(name), js)
	})
}

func (s *Storage) GetTemplate(ctx context.Context, name string) (interface{}, error) {
	if s == nil {
		return nil, &NotFound{Name: name}
	}
	var template interface{}
	err := s.db.View(func(tx *bolt.Tx) error {
		bs := tx.Bucket(templatesBucket).Get([]byte(name))
		if bs == nil {
			return &NotFound{Name: name}
		}
		return json.Unmarshal(bs, &template)
	})
	if err != nil {
		return nil, err
	}
	s.logf("GetTemplate %s", name)
	return template, nil
}

func (s *Storage) RemTemplate(ctx context.Context, name string) error {
	if s == nil {
		return nil
	}
	s.logf("RemTemplate %s", name)
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(templatesBucket).Delete([]byte(name))
	})
}

func (s *Storage) ListTemplates(ctx context.Context) ([]string, error) {
	if s == nil {
		return nil, nil
	}
	names := make([]string, 0, 32)
	err := s.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(templatesBucket).Cursor()
		for name, _ := c.First(); name != nil; name, _ = c.Next() {
			names = append(names, string(name))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logf("ListTemplates found %d", len(names))
	return names, nil
}
