// Package maven provides an HTTP client for Maven Central.
//
// # Overview
//
// The maven discoverer collects dependency coordinates from local pom.xml
// files and fetches each dependency's own POM from Maven Central
// (https://repo1.maven.org/maven2). The <url> and <scm> elements of that
// POM usually point at the source repository.
//
// # Usage
//
//	client := maven.NewClient(backend, 24*time.Hour)
//	project, err := client.FetchProject(ctx, "com.google.guava", "guava", "33.0.0-jre", false)
//	if err != nil {
//	    return err
//	}
//	for _, u := range project.CandidateURLs() {
//	    fmt.Println(u)
//	}
//
// # Version Resolution
//
// Dependencies whose version is missing or still a ${property} are resolved
// to the release version listed in the artifact's maven-metadata.xml.
package maven
