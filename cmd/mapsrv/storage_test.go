package main

import (
	"context"
	"path/filepath"
	"reflect"
	"testing"

	. "github.com/Comcast/remap/util/testutil"
)

func TestStorage(t *testing.T) {
	ctx := context.Background()

	s, err := NewStorage(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	if err = s.Open(ctx); err != nil {
		t.Fatal(err)
	}
	defer s.Close(ctx)

	template := Dwimjs(`{"name":{"source":"user.name"}}`)

	if err = s.PutTemplate(ctx, "demo", template); err != nil {
		t.Fatal(err)
	}

	got, err := s.GetTemplate(ctx, "demo")
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(got, template) {
		t.Fatalf("got %s", JS(got))
	}

	names, err := s.ListTemplates(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(names) != 1 || names[0] != "demo" {
		t.Fatalf("names %v", names)
	}

	if err = s.RemTemplate(ctx, "demo"); err != nil {
		t.Fatal(err)
	}
	if _, err = s.GetTemplate(ctx, "demo"); err == nil {
		t.Fatal("expected NotFound")
	}
}

func TestServiceProcess(t *testing.T) {
	ctx := context.Background()

	s, err := NewService(ctx, filepath.Join(t.TempDir(), "test.db"), "")
	if err != nil {
		t.Fatal(err)
	}
	defer s.store.Close(ctx)

	if err = s.store.PutTemplate(ctx, "upper",
		Dwimjs(`{"name":{"source":"user.name","transform":{"toUpper":[]}}}`)); err != nil {
		t.Fatal(err)
	}

	resp := s.Process(ctx, &MapRequest{
		Id:          "1",
		Source:      Dwimjs(`{"user":{"name":"homer"}}`),
		TemplateRef: "upper",
	})
	if resp.Error != "" {
		t.Fatal(resp.Error)
	}
	if !reflect.DeepEqual(resp.Result, Dwimjs(`{"name":"HOMER"}`)) {
		t.Fatalf("got %s", JS(resp.Result))
	}

	resp = s.Process(ctx, &MapRequest{TemplateRef: "nope"})
	if resp.Error == "" {
		t.Fatal("expected an error")
	}
}
