package material

// SampleText is a short machine-learning primer used when the learner
// starts a session without providing material.
const SampleText = `Machine learning is a field of artificial intelligence that lets computers learn patterns from data instead of being explicitly programmed. A model is trained on examples and then used to make predictions on data it has not seen before.

Supervised learning uses labelled examples, where every input is paired with the expected output. Classification predicts a discrete label, such as whether an email is spam, while regression predicts a continuous value, such as the price of a house.

Unsupervised learning works with unlabelled data. Clustering groups similar examples together, and dimensionality reduction techniques such as principal component analysis compress data while keeping most of its variance.

Overfitting happens when a model memorises the training data, including its noise, and performs poorly on new data. Regularisation, cross-validation and collecting more training data are common ways to reduce overfitting. Underfitting is the opposite problem: the model is too simple to capture the underlying pattern.

Neural networks are built from layers of connected units. Each unit computes a weighted sum of its inputs and applies a non-linear activation function. Networks are trained with gradient descent, using backpropagation to compute how much each weight contributed to the error.

Model evaluation relies on data the model was not trained on. Accuracy, precision, recall and the F1 score summarise classification performance, while mean squared error is common for regression. A confusion matrix shows which classes a classifier mixes up.`
