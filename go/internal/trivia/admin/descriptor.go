package admin

import (
	"fmt"
	"sync"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
)

var (
	registerOnce sync.Once
	registerErr  error
)

// RegisterDescriptor adds the AdminService schema to the global registry so
// reflection clients such as grpcurl can describe it.
func RegisterDescriptor() error {
	registerOnce.Do(func() {
		registerErr = registerDescriptor()
	})
	return registerErr
}

func registerDescriptor() error {
	if _, err := protoregistry.GlobalFiles.FindDescriptorByName(AdminServiceName); err == nil {
		return nil
	}

	fd, err := protodesc.NewFile(fileDescriptor(), protoregistry.GlobalFiles)
	if err != nil {
		return fmt.Errorf("failed to build admin descriptor: %w", err)
	}
	if err := protoregistry.GlobalFiles.RegisterFile(fd); err != nil {
		return fmt.Errorf("failed to register admin descriptor: %w", err)
	}
	return nil
}

func fileDescriptor() *descriptorpb.FileDescriptorProto {
	return &descriptorpb.FileDescriptorProto{
		Name:    proto.String("trivia/admin/v1/admin.proto"),
		Package: proto.String("trivia.admin.v1"),
		Syntax:  proto.String("proto3"),
		Dependency: []string{
			"google/protobuf/empty.proto",
			"google/protobuf/struct.proto",
			"google/protobuf/wrappers.proto",
		},
		Service: []*descriptorpb.ServiceDescriptorProto{{
			Name: proto.String("AdminService"),
			Method: []*descriptorpb.MethodDescriptorProto{
				{
					Name:       proto.String("GetStats"),
					InputType:  proto.String(".google.protobuf.Empty"),
					OutputType: proto.String(".google.protobuf.Struct"),
				},
				{
					Name:       proto.String("GetRoom"),
					InputType:  proto.String(".google.protobuf.StringValue"),
					OutputType: proto.String(".google.protobuf.Struct"),
				},
			},
		}},
	}
}
