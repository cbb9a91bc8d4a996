package maven

import (
	"encoding/xml"
	"strings"
)

type pomProject struct {
	GroupID      string          `xml:"groupId"`
	ArtifactID   string          `xml:"artifactId"`
	Version      string          `xml:"version"`
	Parent       *pomParent      `xml:"parent"`
	Properties   pomProperties   `xml:"properties"`
	Modules      []string        `xml:"modules>module"`
	Dependencies []pomDependency `xml:"dependencies>dependency"`
	Profiles     []pomProfile    `xml:"profiles>profile"`
}

type pomParent struct {
	GroupID string `xml:"groupId"`
	Version string `xml:"version"`
}

type pomProfile struct {
	Modules      []string        `xml:"modules>module"`
	Dependencies []pomDependency `xml:"dependencies>dependency"`
}

type pomDependency struct {
	GroupID    string `xml:"groupId"`
	ArtifactID string `xml:"artifactId"`
	Version    string `xml:"version"`
}

// pomProperties collects the free-form children of <properties>.
type pomProperties map[string]string

func (p *pomProperties) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var entries struct {
		Items []struct {
			XMLName xml.Name
			Value   string `xml:",chardata"`
		} `xml:",any"`
	}
	if err := d.DecodeElement(&entries, &start); err != nil {
		return err
	}
	*p = make(pomProperties, len(entries.Items))
	for _, item := range entries.Items {
		(*p)[item.XMLName.Local] = strings.TrimSpace(item.Value)
	}
	return nil
}

// dependencies returns the direct and profile dependencies. Entries under
// <dependencyManagement> and <build><plugins> are not part of the struct
// paths and never appear.
func (p *pomProject) dependencies() []pomDependency {
	out := append([]pomDependency(nil), p.Dependencies...)
	for _, profile := range p.Profiles {
		out = append(out, profile.Dependencies...)
	}
	return out
}

func (p *pomProject) modules() []string {
	out := append([]string(nil), p.Modules...)
	for _, profile := range p.Profiles {
		out = append(out, profile.Modules...)
	}
	return out
}

// expand substitutes ${name} references from <properties> and the
// project.* built-ins. Unknown references are left in place.
func (p *pomProject) expand(s string) string {
	s = strings.TrimSpace(s)
	for range 8 {
		start := strings.Index(s, "${")
		if start < 0 {
			return s
		}
		end := strings.Index(s[start:], "}")
		if end < 0 {
			return s
		}
		name := s[start+2 : start+end]
		value, ok := p.property(name)
		if !ok {
			return s
		}
		s = s[:start] + value + s[start+end+1:]
	}
	return s
}

func (p *pomProject) property(name string) (string, bool) {
	if v, ok := p.Properties[name]; ok {
		return v, true
	}
	version, group := strings.TrimSpace(p.Version), strings.TrimSpace(p.GroupID)
	if p.Parent != nil {
		if version == "" {
			version = strings.TrimSpace(p.Parent.Version)
		}
		if group == "" {
			group = strings.TrimSpace(p.Parent.GroupID)
		}
	}
	switch name {
	case "project.version", "pom.version", "version":
		return version, version != ""
	case "project.groupId", "pom.groupId":
		return group, group != ""
	case "project.parent.version":
		if p.Parent != nil && p.Parent.Version != "" {
			return strings.TrimSpace(p.Parent.Version), true
		}
	}
	return "", false
}
