package gitfacade

import "strings"

// GetRemoteURL returns the fetch URL of remoteName, or nil if no such
// remote exists.
func GetRemoteURL(path, remoteName string) (*string, error) {
	if !IsValidRepo(path) {
		return nil, &NotARepositoryError{Path: path}
	}

	out, err := runGit(path, "remote", "get-url", remoteName)
	if err != nil {
		if _, ok := err.(*GitInternalError); ok {
			return nil, nil
		}
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return &out, nil
}

// GetRemotes returns every configured remote and its fetch/push URLs.
func GetRemotes(path string) ([]RemoteInfo, error) {
	if !IsValidRepo(path) {
		return nil, &NotARepositoryError{Path: path}
	}

	out, err := runGit(path, "remote")
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}

	var remotes []RemoteInfo
	for _, name := range strings.Split(out, "\n") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}

		info := RemoteInfo{Name: name}
		if url, _ := runGit(path, "remote", "get-url", name); url != "" {
			u := url
			info.URL = &u
		}
		if pushURL, _ := runGit(path, "remote", "get-url", "--push", name); pushURL != "" {
			p := pushURL
			info.PushURL = &p
		}
		remotes = append(remotes, info)
	}

	return remotes, nil
}

// HasRemote reports whether repo path has a remote named remoteName.
func HasRemote(path, remoteName string) (bool, error) {
	url, err := GetRemoteURL(path, remoteName)
	if err != nil {
		return false, err
	}
	return url != nil, nil
}
